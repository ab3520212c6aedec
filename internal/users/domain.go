package users

import (
	"time"

	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// Admin represents a back office account for management.
type Admin struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Avatar      string      `json:"avatar"`
	Status      int         `json:"status"`
	LastLoginAt *time.Time  `json:"last_login_at"`
	LastLoginIP string      `json:"last_login_ip"`
	Roles       []rbac.Role `json:"roles"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ListFilters narrows the admin listing.
type ListFilters struct {
	Username string
	Name     string
	Email    string
	Status   *int
	Page     shared.PageRequest
}

// CreateInput carries a new admin.
type CreateInput struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=6,max=64"`
	Name     string  `json:"name" validate:"required,max=50"`
	Email    string  `json:"email" validate:"omitempty,email,max=100"`
	Phone    string  `json:"phone" validate:"max=20"`
	Avatar   string  `json:"avatar" validate:"max=255"`
	Status   *int    `json:"status" validate:"omitempty,oneof=0 1"`
	RoleIDs  []int64 `json:"role_ids" validate:"dive,gt=0"`
}

// UpdateInput carries admin changes. An empty Password keeps the current one
// and a nil RoleIDs keeps the current roles.
type UpdateInput struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"omitempty,min=6,max=64"`
	Name     string  `json:"name" validate:"required,max=50"`
	Email    string  `json:"email" validate:"omitempty,email,max=100"`
	Phone    string  `json:"phone" validate:"max=20"`
	Avatar   string  `json:"avatar" validate:"max=255"`
	Status   *int    `json:"status" validate:"omitempty,oneof=0 1"`
	RoleIDs  []int64 `json:"role_ids" validate:"omitempty,dive,gt=0"`
}

// RoleAssignment replaces the roles of an admin.
type RoleAssignment struct {
	RoleIDs []int64 `json:"role_ids" validate:"dive,gt=0"`
}

// PasswordReset sets a new password.
type PasswordReset struct {
	Password string `json:"password" validate:"required,min=6,max=64"`
}

// StatusChange switches an admin on or off.
type StatusChange struct {
	Status *int `json:"status" validate:"required,oneof=0 1"`
}

// Record is the persisted form of an admin write.
type Record struct {
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Phone        string
	Avatar       string
	Status       int
}
