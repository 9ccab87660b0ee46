package application

import "vn.io.arda/reminder/internal/domain"

// Failure reasons reported per item.
const (
	ReasonExpired     = "expired"
	ReasonInvalidItem = "invalid item"
	ReasonStoreError  = "store error"
)

// Failure names an item that ended up without notifications.
type Failure struct {
	ItemName string `json:"item_name"`
	Reason   string `json:"reason"`
}

// BulkResult aggregates ScheduleForAll.
type BulkResult struct {
	Success  int       `json:"success"`
	Failed   int       `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

// SyncResult is the status of a synchronization pass.
type SyncResult struct {
	RunID        string `json:"run_id,omitempty"`
	Success      bool   `json:"success"`
	Synchronized int    `json:"synchronized"`
	// Cancelled counts orphan notifications removed by the pass.
	Cancelled int `json:"cancelled"`
	// Skipped is set when the pass did not run (no permission, concurrent pass).
	Skipped  bool      `json:"skipped,omitempty"`
	Error    string    `json:"error,omitempty"`
	Failures []Failure `json:"failures,omitempty"`
}

// NotificationState is returned by Initialize for the UI.
type NotificationState struct {
	Initialized    bool        `json:"initialized"`
	HasPermissions bool        `json:"has_permissions"`
	Error          string      `json:"error,omitempty"`
	Sync           *SyncResult `json:"sync,omitempty"`
}

// EventOutcome reports what a lifecycle or session event did.
type EventOutcome struct {
	Type      domain.EventType `json:"type"`
	Scheduled bool             `json:"scheduled"`
	Cancelled int              `json:"cancelled"`
	Skipped   bool             `json:"skipped,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Sync      *SyncResult      `json:"sync,omitempty"`
}
