package permissions

import (
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// Detail is a permission with its menu title and, on show, the roles holding it.
type Detail struct {
	rbac.Permission
	MenuTitle *string     `json:"menu_title"`
	Roles     []rbac.Role `json:"roles,omitempty"`
}

// ListFilters narrows the permission listing.
type ListFilters struct {
	Name   string
	Code   string
	Type   *int
	MenuID *int
	Page   shared.PageRequest
}

// PermissionInput is the writable part of a permission.
type PermissionInput struct {
	Name        string              `json:"name" validate:"required,max=50"`
	Code        string              `json:"code" validate:"required,max=100"`
	Description string              `json:"description" validate:"max=255"`
	MenuID      *int64              `json:"menu_id" validate:"omitempty,gt=0"`
	Type        rbac.PermissionType `json:"type" validate:"required,oneof=1 2"`
}
