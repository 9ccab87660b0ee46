package domain

import (
	"context"
	"time"
)

// NotificationStore is the port over the device notification store.
// Implementations live in infrastructure/{memory,postgres,sqlite}.
type NotificationStore interface {
	// Schedule stores n. An existing entry with the same identifier is replaced.
	Schedule(ctx context.Context, n ScheduledNotification) error

	// Cancel removes the entry with the given identifier. Unknown identifiers are a no-op.
	Cancel(ctx context.Context, identifier string) error

	// List returns scheduled entries. An empty owner lists every entry.
	List(ctx context.Context, owner string) ([]ScheduledNotification, error)
}

// DueSource exposes entries whose trigger time has passed, for the dispatcher.
type DueSource interface {
	Due(ctx context.Context, now time.Time) ([]ScheduledNotification, error)

	// CancelIfDue removes identifier only while its trigger time is at or
	// before triggerAt, and reports whether it did. A generation rescheduled
	// to a later time after Due listed it is kept.
	CancelIfDue(ctx context.Context, identifier string, triggerAt time.Time) (bool, error)
}

// PermissionStore persists the notification permission per owner.
type PermissionStore interface {
	// Status returns the current permission without prompting.
	Status(ctx context.Context, owner string) (PermissionStatus, error)

	// Request asks for permission. A denied status is sticky and is returned
	// unchanged; any other status becomes granted.
	Request(ctx context.Context, owner string) (PermissionStatus, error)

	// SetStatus records the status reported by the device.
	SetStatus(ctx context.Context, owner string, status PermissionStatus) error
}

// ItemSource is the read port over the external item store.
type ItemSource interface {
	// ListByOwner returns the complete list of active items for owner.
	ListByOwner(ctx context.Context, owner string) ([]Item, error)

	// Get returns a single active item or ErrItemNotFound.
	Get(ctx context.Context, owner, name string) (*Item, error)

	// Owners returns every owner holding at least one active item.
	Owners(ctx context.Context) ([]string, error)
}
