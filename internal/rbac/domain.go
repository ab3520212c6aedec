package rbac

import "time"

// Status values shared by admins, roles and menus.
const (
	StatusDisabled = 0
	StatusActive   = 1
)

// RootMenuID is the parent reference of top-level menus.
const RootMenuID int64 = 0

// MenuKind classifies a menu entry.
type MenuKind int

const (
	MenuKindDirectory MenuKind = 1
	MenuKindPage      MenuKind = 2
	MenuKindAction    MenuKind = 3
)

// Renders reports whether the kind shows up in navigation.
func (k MenuKind) Renders() bool {
	return k == MenuKindDirectory || k == MenuKindPage
}

// PermissionType separates navigational grants from action grants.
type PermissionType int

const (
	PermissionTypeMenu   PermissionType = 1
	PermissionTypeAction PermissionType = 2
)

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Sort        int          `json:"sort"`
	Status      int          `json:"status"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Active reports whether the role is switched on.
func (r Role) Active() bool {
	return r.Status == StatusActive
}

// Permission represents an atomic capability.
type Permission struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Code        string         `json:"code"`
	Description string         `json:"description"`
	MenuID      *int64         `json:"menu_id"`
	Type        PermissionType `json:"type"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Menu is a navigation entry. ParentID is RootMenuID for top-level entries.
type Menu struct {
	ID        int64     `json:"id"`
	ParentID  int64     `json:"parent_id"`
	Title     string    `json:"title"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Component string    `json:"component"`
	Icon      string    `json:"icon"`
	Kind      MenuKind  `json:"type"`
	Sort      int       `json:"sort"`
	Status    int       `json:"status"`
	IsHidden  bool      `json:"is_hidden"`
	KeepAlive bool      `json:"keep_alive"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Visible reports whether the menu belongs in an actor's navigation.
func (m Menu) Visible() bool {
	return m.Status == StatusActive && !m.IsHidden && m.Kind.Renders()
}

// MenuNode is a menu with its ordered children. Children is never nil.
type MenuNode struct {
	Menu
	Children []MenuNode `json:"children"`
}

// MenuIDSet is a set of menu identifiers.
type MenuIDSet map[int64]struct{}

// NewMenuIDSet builds a set from ids.
func NewMenuIDSet(ids ...int64) MenuIDSet {
	set := make(MenuIDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s MenuIDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}
