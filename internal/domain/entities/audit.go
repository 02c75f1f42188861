package entities

import "time"

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	CompanyID CompanyID      `json:"company_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Audit actions.
const (
	AuditSnapshotComputed = "snapshot_computed"
	AuditSnapshotForced   = "snapshot_forced"
	AuditImport           = "import"
	AuditWatchListLoaded  = "watchlist_loaded"
	AuditOwnershipLoaded  = "ownership_loaded"
	AuditCapitalLoaded    = "capital_loaded"
)
