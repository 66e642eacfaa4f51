// Package catalog holds the console's navigation model: menus, the programs
// behind them and the grants that open checked programs to authorization
// groups.
package catalog

import (
	"context"
	"strings"
)

// AuthCheckEnabled is the Program.AuthCheck value that turns on grant checks.
const AuthCheckEnabled = "Y"

// Program is a feature reachable from one or more menus.
type Program struct {
	ProgCd    string `json:"progCd"`
	ProgNm    string `json:"progNm"`
	ProgPh    string `json:"progPh,omitempty"` // Page path
	AuthCheck string `json:"authCheck"`
	Remark    string `json:"remark,omitempty"`
}

// RequiresAuthCheck reports whether access needs an AuthGroupMenu grant.
func (p *Program) RequiresAuthCheck() bool {
	return p != nil && strings.EqualFold(p.AuthCheck, AuthCheckEnabled)
}

// Menu is a navigable page entry. Folder menus have no program.
type Menu struct {
	MenuID    int64    `json:"menuId"`
	MenuGrpCd string   `json:"menuGrpCd"`
	MenuNm    string   `json:"menuNm"`
	ParentID  *int64   `json:"parentId,omitempty"`
	Level     int      `json:"level"`
	Sort      int      `json:"sort"`
	ProgCd    string   `json:"progCd,omitempty"`
	Program   *Program `json:"program,omitempty"`
	Children  []*Menu  `json:"children,omitempty"`
}

// AuthGroupMenu grants an authorization group access to a menu, with the
// per-function flags the page uses to enable its buttons.
type AuthGroupMenu struct {
	GrpAuthCd string `json:"grpAuthCd"`
	MenuID    int64  `json:"menuId"`
	ProgCd    string `json:"progCd,omitempty"`
	SchAh     string `json:"schAh"` // search
	SavAh     string `json:"savAh"` // save
	ExlAh     string `json:"exlAh"` // excel export
	DelAh     string `json:"delAh"` // delete
	Fn1Ah     string `json:"fn1Ah"`
	Fn2Ah     string `json:"fn2Ah"`
}

// MenuRepo looks up menus. FindMenu returns an error wrapping
// internal/errors.ErrNotFound when the menu does not exist.
type MenuRepo interface {
	FindMenu(ctx context.Context, menuID int64) (*Menu, error)
	// AuthorizedMenus returns the flat, sort-ordered list of menus in
	// menuGrpCd visible to members of authGroups.
	AuthorizedMenus(ctx context.Context, menuGrpCd string, authGroups []string) ([]*Menu, error)
}

// GrantRepo looks up grants. CurrentGrant returns an error wrapping
// internal/errors.ErrNotFound when none of authGroups holds a grant.
type GrantRepo interface {
	CurrentGrant(ctx context.Context, menuID int64, authGroups []string) (*AuthGroupMenu, error)
}

// Repo is the full catalog collaborator.
type Repo interface {
	MenuRepo
	GrantRepo
}

// Writer maintains catalog entries. Upserts replace by primary key.
type Writer interface {
	UpsertProgram(ctx context.Context, p *Program) error
	UpsertMenu(ctx context.Context, m *Menu) error
	UpsertGrant(ctx context.Context, g *AuthGroupMenu) error
	// DeleteGrant revokes grpAuthCd's grant on menuID. Revoking a grant that
	// does not exist is not an error.
	DeleteGrant(ctx context.Context, grpAuthCd string, menuID int64) error
}

// FilterAuthorized keeps the menus a user may see: folders, menus whose
// program is not access checked, and menus in granted. Order is preserved.
func FilterAuthorized(menus []*Menu, granted map[int64]struct{}) []*Menu {
	out := make([]*Menu, 0, len(menus))
	for _, m := range menus {
		if m.Program == nil || !m.Program.RequiresAuthCheck() {
			out = append(out, m)
			continue
		}
		if _, ok := granted[m.MenuID]; ok {
			out = append(out, m)
		}
	}
	return out
}
