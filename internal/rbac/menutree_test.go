package rbac

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menu(id, parent int64, sort int, kind MenuKind) Menu {
	return Menu{ID: id, ParentID: parent, Sort: sort, Kind: kind, Status: StatusActive}
}

func ids(nodes []MenuNode) []int64 {
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestBuildTreeNestsAndOrders(t *testing.T) {
	menus := []Menu{
		menu(3, 1, 2, MenuKindPage),
		menu(1, 0, 2, MenuKindDirectory),
		menu(2, 1, 1, MenuKindPage),
		menu(4, 0, 1, MenuKindDirectory),
		menu(5, 2, 0, MenuKindAction),
	}
	tree, err := BuildTree(menus)
	require.NoError(t, err)

	require.Equal(t, []int64{4, 1}, ids(tree))
	assert.Empty(t, tree[0].Children)
	require.Equal(t, []int64{2, 3}, ids(tree[1].Children))
	assert.Equal(t, []int64{5}, ids(tree[1].Children[0].Children))
}

func TestBuildTreeStableOnEqualSort(t *testing.T) {
	menus := []Menu{
		menu(9, 0, 1, MenuKindPage),
		menu(3, 0, 1, MenuKindPage),
		menu(7, 0, 1, MenuKindPage),
	}
	tree, err := BuildTree(menus)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 3, 7}, ids(tree))
}

func TestBuildTreeDanglingParentBecomesRoot(t *testing.T) {
	menus := []Menu{
		menu(1, 0, 2, MenuKindDirectory),
		menu(2, 99, 1, MenuKindPage),
	}
	tree, err := BuildTree(menus)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(tree))
}

func TestBuildTreeIncludesHiddenAndInactive(t *testing.T) {
	hidden := menu(2, 1, 1, MenuKindPage)
	hidden.IsHidden = true
	off := menu(3, 1, 2, MenuKindPage)
	off.Status = StatusDisabled
	tree, err := BuildTree([]Menu{menu(1, 0, 1, MenuKindDirectory), hidden, off})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, []int64{2, 3}, ids(tree[0].Children))
}

func TestBuildTreeRejectsCycle(t *testing.T) {
	_, err := BuildTree([]Menu{
		menu(1, 0, 1, MenuKindDirectory),
		menu(2, 3, 1, MenuKindPage),
		menu(3, 2, 1, MenuKindPage),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedMenuGraph))
	var malformed *MalformedMenuGraphError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, int64(2), malformed.MenuID)
}

func TestBuildTreeEmpty(t *testing.T) {
	tree, err := BuildTree(nil)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestBuildAuthorizedTreeScenario(t *testing.T) {
	roles := []Role{{ID: 1, Status: StatusActive, Permissions: []Permission{{Code: "admin:list"}}}}
	assert.Equal(t, []string{"admin:list"}, Resolve(roles).Codes())

	system := menu(1, 0, 1, MenuKindDirectory)
	system.Title = "System"
	admins := menu(2, 1, 1, MenuKindPage)
	admins.Title = "Admins"

	tree, err := BuildAuthorizedTree([]Menu{system, admins}, NewMenuIDSet(2))
	require.NoError(t, err)

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "System", decoded[0]["title"])
	children := decoded[0]["children"].([]any)
	require.Len(t, children, 1)
	leaf := children[0].(map[string]any)
	assert.Equal(t, "Admins", leaf["title"])
	assert.Equal(t, []any{}, leaf["children"])
}

func TestBuildAuthorizedTreeEmptyAllowed(t *testing.T) {
	tree, err := BuildAuthorizedTree([]Menu{menu(1, 0, 1, MenuKindDirectory)}, NewMenuIDSet())
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Empty(t, tree)

	raw, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestBuildAuthorizedTreeFilters(t *testing.T) {
	hidden := menu(3, 1, 2, MenuKindPage)
	hidden.IsHidden = true
	off := menu(4, 1, 3, MenuKindPage)
	off.Status = StatusDisabled
	menus := []Menu{
		menu(1, 0, 1, MenuKindDirectory),
		menu(2, 1, 1, MenuKindPage),
		hidden,
		off,
		menu(5, 2, 1, MenuKindAction),
		menu(6, 0, 2, MenuKindDirectory),
	}
	tree, err := BuildAuthorizedTree(menus, NewMenuIDSet(2, 3, 4, 5))
	require.NoError(t, err)
	require.Equal(t, []int64{1}, ids(tree))
	require.Equal(t, []int64{2}, ids(tree[0].Children))
	assert.Empty(t, tree[0].Children[0].Children)
}

func TestBuildAuthorizedTreePrunesUnderFilteredParent(t *testing.T) {
	off := menu(1, 0, 1, MenuKindDirectory)
	off.Status = StatusDisabled
	tree, err := BuildAuthorizedTree([]Menu{off, menu(2, 1, 1, MenuKindPage)}, NewMenuIDSet(2))
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestBuildAuthorizedTreeIgnoresUnknownIDs(t *testing.T) {
	tree, err := BuildAuthorizedTree([]Menu{menu(1, 0, 1, MenuKindPage)}, NewMenuIDSet(1, 42))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(tree))
}

func TestBuildAuthorizedTreeDanglingParent(t *testing.T) {
	tree, err := BuildAuthorizedTree([]Menu{menu(2, 77, 1, MenuKindPage)}, NewMenuIDSet(2))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(tree))
}

func TestBuildAuthorizedTreeCycle(t *testing.T) {
	menus := []Menu{
		menu(1, 2, 1, MenuKindPage),
		menu(2, 1, 1, MenuKindPage),
	}
	_, err := BuildAuthorizedTree(menus, NewMenuIDSet(1, 2))
	require.ErrorIs(t, err, ErrMalformedMenuGraph)

	_, err = BuildAuthorizedTree([]Menu{menu(1, 1, 1, MenuKindPage)}, NewMenuIDSet(1))
	require.ErrorIs(t, err, ErrMalformedMenuGraph)
}

func TestAncestorClosure(t *testing.T) {
	menus := []Menu{
		menu(1, 0, 1, MenuKindDirectory),
		menu(2, 1, 1, MenuKindDirectory),
		menu(3, 2, 1, MenuKindPage),
		menu(4, 2, 2, MenuKindPage),
	}
	closure, err := AncestorClosure(menus, NewMenuIDSet(3, 4))
	require.NoError(t, err)
	assert.Equal(t, NewMenuIDSet(1, 2, 3, 4), closure)
}

func TestBuildAuthorizedTreeSubsetOfFullTree(t *testing.T) {
	menus := []Menu{
		menu(1, 0, 1, MenuKindDirectory),
		menu(2, 1, 2, MenuKindPage),
		menu(3, 1, 1, MenuKindPage),
		menu(4, 0, 2, MenuKindDirectory),
		menu(5, 4, 1, MenuKindPage),
	}
	full, err := BuildTree(menus)
	require.NoError(t, err)
	restricted, err := BuildAuthorizedTree(menus, NewMenuIDSet(2, 5))
	require.NoError(t, err)

	parents := make(map[int64]int64)
	var walk func(parent int64, nodes []MenuNode)
	walk = func(parent int64, nodes []MenuNode) {
		for _, n := range nodes {
			parents[n.ID] = parent
			walk(n.ID, n.Children)
		}
	}
	walk(RootMenuID, full)

	var check func(parent int64, nodes []MenuNode)
	check = func(parent int64, nodes []MenuNode) {
		for _, n := range nodes {
			want, ok := parents[n.ID]
			require.True(t, ok, "menu %d missing from full tree", n.ID)
			assert.Equal(t, want, parent, "menu %d moved", n.ID)
			check(n.ID, n.Children)
		}
	}
	check(RootMenuID, restricted)
	assert.Equal(t, []int64{1, 4}, ids(restricted))
}

func TestBuildAuthorizedTreeIdempotent(t *testing.T) {
	menus := []Menu{
		menu(1, 0, 1, MenuKindDirectory),
		menu(2, 1, 1, MenuKindPage),
		menu(3, 1, 1, MenuKindPage),
	}
	allowed := NewMenuIDSet(2, 3)
	first, err := BuildAuthorizedTree(menus, allowed)
	require.NoError(t, err)
	second, err := BuildAuthorizedTree(menus, allowed)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
