package audit

import (
	"encoding/json"
	"time"

	"github.com/backoffice/admin-system/internal/shared"
)

// Log outcome values.
const (
	StatusFailed  = 0
	StatusSuccess = 1
)

// Log is one recorded admin request.
type Log struct {
	ID           int64           `json:"id"`
	AdminID      *int64          `json:"admin_id"`
	Username     string          `json:"username"`
	Module       string          `json:"module"`
	Action       string          `json:"action"`
	Method       string          `json:"method"`
	URL          string          `json:"url"`
	IP           string          `json:"ip"`
	UserAgent    string          `json:"user_agent"`
	Params       json.RawMessage `json:"params"`
	Status       int             `json:"status"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Succeeded reports whether the request finished below 400.
func (l Log) Succeeded() bool { return l.Status == StatusSuccess }

// ListFilters narrows log listings. From is inclusive, To exclusive.
type ListFilters struct {
	Username string
	Module   string
	Action   string
	Status   *int
	From     *time.Time
	To       *time.Time
	Page     shared.PageRequest
}

// Bucket is a grouped count.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Statistics summarises the log table.
type Statistics struct {
	Total       int      `json:"total"`
	Success     int      `json:"success"`
	Failed      int      `json:"failed"`
	ModuleStats []Bucket `json:"module_stats"`
	ActionStats []Bucket `json:"action_stats"`
}

// BatchDelete is the body of the batch delete endpoint.
type BatchDelete struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// Deleted reports how many rows a delete removed.
type Deleted struct {
	Deleted int64 `json:"deleted"`
}
