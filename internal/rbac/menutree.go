package rbac

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrMalformedMenuGraph matches every *MalformedMenuGraphError.
var ErrMalformedMenuGraph = errors.New("rbac: malformed menu graph")

// MalformedMenuGraphError reports a parent chain that never reaches the root.
type MalformedMenuGraphError struct {
	MenuID int64
	Bound  int
}

func (e *MalformedMenuGraphError) Error() string {
	return fmt.Sprintf("rbac: malformed menu graph: parent chain of menu %d does not reach the root within %d steps", e.MenuID, e.Bound)
}

// Is lets errors.Is match ErrMalformedMenuGraph.
func (e *MalformedMenuGraphError) Is(target error) bool {
	return target == ErrMalformedMenuGraph
}

// BuildTree nests every supplied menu under its parent. Menus whose parent is
// RootMenuID or absent from menus become roots. Siblings are ordered by Sort,
// ties keeping input order. Menus caught in a parent cycle cannot be placed
// and produce a *MalformedMenuGraphError.
func BuildTree(menus []Menu) ([]MenuNode, error) {
	a := newArena(menus)
	include := func(i int) bool { return a.canonical(i) }
	tree, placed := a.build(include)
	for i, m := range a.menus {
		if include(i) && !placed[i] {
			return nil, &MalformedMenuGraphError{MenuID: m.ID, Bound: len(a.menus)}
		}
	}
	return tree, nil
}

// BuildAuthorizedTree builds the navigation visible through allowed: allowed
// plus all ancestors, limited to active, non-hidden directories and pages.
// A menu whose parent is present but filtered out is dropped with its subtree.
func BuildAuthorizedTree(menus []Menu, allowed MenuIDSet) ([]MenuNode, error) {
	if len(allowed) == 0 {
		return []MenuNode{}, nil
	}
	a := newArena(menus)
	closure, err := a.ancestorClosure(allowed)
	if err != nil {
		return nil, err
	}
	tree, _ := a.build(func(i int) bool {
		m := a.menus[i]
		return a.canonical(i) && closure.Has(m.ID) && m.Visible()
	})
	return tree, nil
}

// AncestorClosure returns allowed plus every transitive parent present in menus.
// Ids not present in menus are ignored.
func AncestorClosure(menus []Menu, allowed MenuIDSet) (MenuIDSet, error) {
	return newArena(menus).ancestorClosure(allowed)
}

// arena indexes a flat menu slice by id so tree assembly works on indices.
type arena struct {
	menus []Menu
	byID  map[int64]int
}

func newArena(menus []Menu) *arena {
	byID := make(map[int64]int, len(menus))
	for i, m := range menus {
		if _, dup := byID[m.ID]; !dup {
			byID[m.ID] = i
		}
	}
	return &arena{menus: menus, byID: byID}
}

// canonical is false for later rows repeating an id already seen.
func (a *arena) canonical(i int) bool {
	return a.byID[a.menus[i].ID] == i
}

func (a *arena) has(id int64) bool {
	_, ok := a.byID[id]
	return ok
}

func (a *arena) ancestorClosure(allowed MenuIDSet) (MenuIDSet, error) {
	ids := make([]int64, 0, len(allowed))
	for id := range allowed {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	bound := len(a.menus)
	closure := make(MenuIDSet, len(allowed))
	path := make([]int64, 0, 8)
	for _, id := range ids {
		if !a.has(id) {
			continue
		}
		path = path[:0]
		for cur := id; cur != RootMenuID && a.has(cur) && !closure.Has(cur); {
			if len(path) >= bound {
				return nil, &MalformedMenuGraphError{MenuID: id, Bound: bound}
			}
			path = append(path, cur)
			cur = a.menus[a.byID[cur]].ParentID
		}
		for _, p := range path {
			closure[p] = struct{}{}
		}
	}
	return closure, nil
}

// build assembles the included menus. placed marks indices reachable from a root.
func (a *arena) build(include func(i int) bool) ([]MenuNode, []bool) {
	children := make(map[int64][]int)
	for i, m := range a.menus {
		if !include(i) {
			continue
		}
		parent := m.ParentID
		if parent != RootMenuID && !a.has(parent) {
			parent = RootMenuID
		}
		children[parent] = append(children[parent], i)
	}
	for _, list := range children {
		slices.SortStableFunc(list, func(x, y int) int {
			return cmp.Compare(a.menus[x].Sort, a.menus[y].Sort)
		})
	}

	placed := make([]bool, len(a.menus))
	var assemble func(parent int64) []MenuNode
	assemble = func(parent int64) []MenuNode {
		list := children[parent]
		nodes := make([]MenuNode, 0, len(list))
		for _, i := range list {
			if placed[i] {
				continue
			}
			placed[i] = true
			nodes = append(nodes, MenuNode{Menu: a.menus[i], Children: assemble(a.menus[i].ID)})
		}
		return nodes
	}
	return assemble(RootMenuID), placed
}
