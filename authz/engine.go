// Package authz decides whether a resolved user may open a console page.
//
// Only menus backed by a program whose authCheck flag is set are checked
// against the user's authorization groups; unknown menus, folders and
// unchecked programs are always open.
package authz

import (
	"context"

	"github.com/jrsteele09/go-admin-console/catalog"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/pkg/errors"
)

// Result describes the page context of an authorization decision.
type Result struct {
	Menu    *catalog.Menu          // nil when no menu was requested or found
	Program *catalog.Program       // nil for folders
	Grant   *catalog.AuthGroupMenu // set only for checked programs
	Allowed bool
}

// Engine runs menu authorization against the catalog collaborators.
type Engine struct {
	menus  catalog.MenuRepo
	grants catalog.GrantRepo
}

func NewEngine(menus catalog.MenuRepo, grants catalog.GrantRepo) (*Engine, error) {
	if menus == nil {
		return nil, errors.New("[NewEngine] menu repo is required")
	}
	if grants == nil {
		return nil, errors.New("[NewEngine] grant repo is required")
	}
	return &Engine{
		menus:  menus,
		grants: grants,
	}, nil
}

// Authorize checks user against the menu identified by menuID. A denial
// returns the partial result together with an error wrapping
// internal/errors.ErrAccessDenied; lookup failures are returned as-is.
func (e *Engine) Authorize(ctx context.Context, user users.SessionUser, menuID *int64) (Result, error) {
	if menuID == nil {
		return Result{Allowed: true}, nil
	}

	menu, err := e.menus.FindMenu(ctx, *menuID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return Result{Allowed: true}, nil
	}
	if err != nil {
		return Result{}, errors.Wrapf(err, "[Engine Authorize] find menu %d", *menuID)
	}

	result := Result{Menu: menu, Program: menu.Program, Allowed: true}
	if !menu.Program.RequiresAuthCheck() {
		return result, nil
	}

	grant, err := e.grants.CurrentGrant(ctx, menu.MenuID, user.AuthGroupList)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		result.Allowed = false
		return result, apperrors.Wrapf(apperrors.ErrAccessDenied, "[Engine Authorize] user %s menu %d", user.UserCd, menu.MenuID)
	}
	if err != nil {
		return Result{}, errors.Wrapf(err, "[Engine Authorize] grant for menu %d", menu.MenuID)
	}

	result.Grant = grant
	return result, nil
}

// MenuTree returns the navigation tree visible to user.
func (e *Engine) MenuTree(ctx context.Context, user users.SessionUser) ([]*catalog.Menu, error) {
	menus, err := e.menus.AuthorizedMenus(ctx, user.MenuGrpCd, user.AuthGroupList)
	if err != nil {
		return nil, errors.Wrapf(err, "[Engine MenuTree] menu group %s", user.MenuGrpCd)
	}
	return BuildMenuTree(menus), nil
}
