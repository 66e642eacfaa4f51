package fakecatalogrepo

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jrsteele09/go-admin-console/catalog"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

var (
	_ catalog.Repo   = (*FakeCatalogRepo)(nil)
	_ catalog.Writer = (*FakeCatalogRepo)(nil)
)

type FakeCatalogRepo struct {
	programs map[string]*catalog.Program                  // progCd -> program
	menus    map[int64]*catalog.Menu                      // menuID -> menu
	grants   map[int64]map[string]*catalog.AuthGroupMenu // menuID -> grpAuthCd -> grant
	lock     sync.RWMutex
}

func NewFakeCatalogRepo() *FakeCatalogRepo {
	return &FakeCatalogRepo{
		programs: make(map[string]*catalog.Program),
		menus:    make(map[int64]*catalog.Menu),
		grants:   make(map[int64]map[string]*catalog.AuthGroupMenu),
	}
}

func (r *FakeCatalogRepo) UpsertProgram(_ context.Context, p *catalog.Program) error {
	if p == nil || p.ProgCd == "" {
		return errors.New("progCd is required")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	cp := *p
	r.programs[p.ProgCd] = &cp
	return nil
}

// UpsertMenu stores m. Its Program field is ignored; the program is joined by
// ProgCd on read.
func (r *FakeCatalogRepo) UpsertMenu(_ context.Context, m *catalog.Menu) error {
	if m == nil || m.MenuID == 0 {
		return errors.New("menuId is required")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	cp := *m
	cp.Program = nil
	cp.Children = nil
	r.menus[m.MenuID] = &cp
	return nil
}

func (r *FakeCatalogRepo) UpsertGrant(_ context.Context, g *catalog.AuthGroupMenu) error {
	if g == nil || g.GrpAuthCd == "" || g.MenuID == 0 {
		return errors.New("grpAuthCd and menuId are required")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.grants[g.MenuID]; !ok {
		r.grants[g.MenuID] = make(map[string]*catalog.AuthGroupMenu)
	}
	cp := *g
	r.grants[g.MenuID][g.GrpAuthCd] = &cp
	return nil
}

func (r *FakeCatalogRepo) DeleteGrant(_ context.Context, grpAuthCd string, menuID int64) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.grants[menuID], grpAuthCd)
	return nil
}

func (r *FakeCatalogRepo) FindMenu(_ context.Context, menuID int64) (*catalog.Menu, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	m, ok := r.menus[menuID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.joined(m), nil
}

func (r *FakeCatalogRepo) AuthorizedMenus(_ context.Context, menuGrpCd string, authGroups []string) ([]*catalog.Menu, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	menus := make([]*catalog.Menu, 0)
	granted := make(map[int64]struct{})
	for id, m := range r.menus {
		if m.MenuGrpCd != menuGrpCd {
			continue
		}
		menus = append(menus, r.joined(m))
		for _, grp := range authGroups {
			if _, ok := r.grants[id][grp]; ok {
				granted[id] = struct{}{}
				break
			}
		}
	}
	sort.Slice(menus, func(i, j int) bool {
		if menus[i].Sort != menus[j].Sort {
			return menus[i].Sort < menus[j].Sort
		}
		return menus[i].MenuID < menus[j].MenuID
	})
	return catalog.FilterAuthorized(menus, granted), nil
}

// CurrentGrant walks authGroups in order and returns the first grant found.
func (r *FakeCatalogRepo) CurrentGrant(_ context.Context, menuID int64, authGroups []string) (*catalog.AuthGroupMenu, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, grp := range authGroups {
		if g, ok := r.grants[menuID][grp]; ok {
			cp := *g
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *FakeCatalogRepo) joined(m *catalog.Menu) *catalog.Menu {
	cp := *m
	if p, ok := r.programs[m.ProgCd]; ok && m.ProgCd != "" {
		pc := *p
		cp.Program = &pc
	}
	return &cp
}
