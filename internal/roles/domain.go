package roles

import (
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// RoleListFilters narrows the role listing.
type RoleListFilters struct {
	Name   string
	Code   string
	Status *int
	Page   shared.PageRequest
}

// RoleInput is the writable part of a role.
type RoleInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Code        string `json:"code" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
	Sort        int    `json:"sort"`
	Status      *int   `json:"status" validate:"omitempty,oneof=0 1"`
}

func (in RoleInput) status() int {
	if in.Status == nil {
		return rbac.StatusActive
	}
	return *in.Status
}

// PermissionAssignment replaces the permissions of a role.
type PermissionAssignment struct {
	PermissionIDs []int64 `json:"permission_ids" validate:"dive,gt=0"`
}

// AdminAssignment replaces the admins holding a role.
type AdminAssignment struct {
	AdminIDs []int64 `json:"admin_ids" validate:"dive,gt=0"`
}
