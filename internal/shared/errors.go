package shared

import (
	"fmt"

	"github.com/backoffice/admin-system/internal/platform/httpx"
)

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", httpx.ErrUnauthorized)
	// ErrAccountDisabled indicates the admin account is switched off.
	ErrAccountDisabled = fmt.Errorf("account disabled: %w", httpx.ErrForbidden)
)
