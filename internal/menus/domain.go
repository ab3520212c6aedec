package menus

import "github.com/backoffice/admin-system/internal/rbac"

// ListFilters narrows the menu listing.
type ListFilters struct {
	Title  string
	Status *int
}

// MenuInput is the writable part of a menu.
type MenuInput struct {
	ParentID  int64         `json:"parent_id" validate:"gte=0"`
	Title     string        `json:"title" validate:"required,max=50"`
	Name      string        `json:"name" validate:"max=50"`
	Path      string        `json:"path" validate:"max=255"`
	Component string        `json:"component" validate:"max=255"`
	Icon      string        `json:"icon" validate:"max=50"`
	Type      rbac.MenuKind `json:"type" validate:"required,oneof=1 2 3"`
	Sort      int           `json:"sort"`
	Status    *int          `json:"status" validate:"omitempty,oneof=0 1"`
	IsHidden  bool          `json:"is_hidden"`
	KeepAlive bool          `json:"keep_alive"`
}

func (in MenuInput) status() int {
	if in.Status == nil {
		return rbac.StatusActive
	}
	return *in.Status
}
