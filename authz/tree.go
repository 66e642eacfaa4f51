package authz

import (
	"sort"

	"github.com/jrsteele09/go-admin-console/catalog"
)

// BuildMenuTree nests a flat menu list by ParentID. Siblings are ordered by
// Sort then MenuID. Menus whose parent is missing from the list are dropped,
// as are folders (menus without a program) with nothing visible beneath them.
// The input menus are not modified.
func BuildMenuTree(menus []*catalog.Menu) []*catalog.Menu {
	nodes := make(map[int64]*catalog.Menu, len(menus))
	ordered := make([]*catalog.Menu, 0, len(menus))
	for _, m := range menus {
		if m == nil {
			continue
		}
		if _, dup := nodes[m.MenuID]; dup {
			continue
		}
		cp := *m
		cp.Children = nil
		nodes[m.MenuID] = &cp
		ordered = append(ordered, &cp)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Sort != ordered[j].Sort {
			return ordered[i].Sort < ordered[j].Sort
		}
		return ordered[i].MenuID < ordered[j].MenuID
	})

	roots := make([]*catalog.Menu, 0)
	for _, n := range ordered {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[*n.ParentID]; ok && parent != n {
			parent.Children = append(parent.Children, n)
		}
	}
	if tree := prune(roots); tree != nil {
		return tree
	}
	return []*catalog.Menu{}
}

func prune(menus []*catalog.Menu) []*catalog.Menu {
	out := menus[:0]
	for _, m := range menus {
		m.Children = prune(m.Children)
		if m.Program == nil && len(m.Children) == 0 {
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
