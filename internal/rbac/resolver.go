package rbac

import "sort"

// PermissionSet is a de-duplicated set of permission codes.
// Iteration order is unspecified; use Codes for stable output.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from codes.
func NewPermissionSet(codes ...string) PermissionSet {
	set := make(PermissionSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Resolve unions the permission codes granted by roles. Role status is not
// consulted; callers drop inactive roles before resolving if they need to.
func Resolve(roles []Role) PermissionSet {
	set := make(PermissionSet)
	for _, role := range roles {
		for _, perm := range role.Permissions {
			set[perm.Code] = struct{}{}
		}
	}
	return set
}

// Has reports whether code is granted.
func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// HasAny is true when at least one required code is granted, or none are required.
func (s PermissionSet) HasAny(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, code := range required {
		if s.Has(code) {
			return true
		}
	}
	return false
}

// HasAll is true when every required code is granted.
func (s PermissionSet) HasAll(required ...string) bool {
	for _, code := range required {
		if !s.Has(code) {
			return false
		}
	}
	return true
}

// Codes returns the codes sorted ascending.
func (s PermissionSet) Codes() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
