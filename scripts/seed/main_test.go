package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backoffice/admin-system/internal/shared"
)

func TestPermissionSeedsCoverCoreScopes(t *testing.T) {
	seeded := make(map[string]bool, len(permissionSeeds))
	for _, p := range permissionSeeds {
		assert.False(t, seeded[p.code], "duplicate permission %s", p.code)
		seeded[p.code] = true
	}
	for _, code := range shared.CoreScopes() {
		assert.True(t, seeded[code], "permission %s is not seeded", code)
	}
}

func TestPermissionSeedsReferenceMenus(t *testing.T) {
	menus := make(map[string]bool, len(pageMenus))
	for _, m := range pageMenus {
		menus[m.name] = true
	}
	for _, p := range permissionSeeds {
		assert.True(t, menus[p.menu], "permission %s points at unknown menu %s", p.code, p.menu)
	}
}

func TestRoleGrantsAreSeeded(t *testing.T) {
	seeded := make(map[string]bool, len(permissionSeeds))
	for _, p := range permissionSeeds {
		seeded[p.code] = true
	}
	for _, r := range roleSeeds {
		for _, code := range r.permissions {
			assert.True(t, seeded[code], "role %s grants unknown permission %s", r.code, code)
		}
	}
}
