package rbac

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func role(id int64, status int, codes ...string) Role {
	perms := make([]Permission, len(codes))
	for i, code := range codes {
		perms[i] = Permission{ID: int64(i + 1), Code: code}
	}
	return Role{ID: id, Status: status, Permissions: perms}
}

func TestResolveUnionsAndDeduplicates(t *testing.T) {
	set := Resolve([]Role{
		role(1, StatusActive, "admin:list", "role:list"),
		role(2, StatusActive, "role:list", "menu:list"),
		role(3, StatusActive),
	})
	assert.Equal(t, []string{"admin:list", "menu:list", "role:list"}, set.Codes())
}

func TestResolveKeepsInactiveRoles(t *testing.T) {
	set := Resolve([]Role{role(1, StatusDisabled, "log:delete")})
	assert.True(t, set.Has("log:delete"))
}

func TestResolveEmpty(t *testing.T) {
	set := Resolve(nil)
	require.NotNil(t, set)
	assert.Empty(t, set.Codes())
	assert.False(t, set.HasAny("admin:list"))
	assert.True(t, set.HasAny())
	assert.True(t, set.HasAll())
}

func TestResolveIsCaseSensitive(t *testing.T) {
	set := Resolve([]Role{role(1, StatusActive, "Admin:List")})
	assert.False(t, set.Has("admin:list"))
	assert.True(t, set.Has("Admin:List"))
}

func TestHasAnyHasAll(t *testing.T) {
	set := NewPermissionSet("admin:list", "admin:create")

	cases := []struct {
		name     string
		required []string
		any, all bool
	}{
		{name: "none required", required: nil, any: true, all: true},
		{name: "one granted", required: []string{"admin:list"}, any: true, all: true},
		{name: "partial", required: []string{"admin:list", "admin:delete"}, any: true, all: false},
		{name: "none granted", required: []string{"role:list"}, any: false, all: false},
		{name: "repeated", required: []string{"admin:create", "admin:create"}, any: true, all: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.any, set.HasAny(tc.required...))
			assert.Equal(t, tc.all, set.HasAll(tc.required...))
		})
	}
}

func TestResolveIgnoresRoleOrder(t *testing.T) {
	roles := []Role{
		role(1, StatusActive, "admin:list", "role:list"),
		role(2, StatusDisabled, "log:delete"),
		role(3, StatusActive, "role:list", "menu:create", "Menu:create"),
		role(4, StatusActive),
		role(5, StatusActive, "permission:list", "admin:list"),
	}
	want := Resolve(roles)

	reversed := slices.Clone(roles)
	slices.Reverse(reversed)
	assert.Equal(t, want, Resolve(reversed))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := slices.Clone(roles)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Resolve(shuffled))
		assert.Equal(t, want.Codes(), Resolve(shuffled).Codes())
	}
}
