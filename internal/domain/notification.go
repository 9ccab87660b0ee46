package domain

import "time"

// Kind distinguishes the two notifications derived from a single item.
type Kind string

const (
	// KindReminder fires a week before the item expires.
	KindReminder Kind = "reminder"
	// KindExpiry fires at the item's expiry.
	KindExpiry Kind = "expiry"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindReminder || k == KindExpiry
}

// Payload is the structured key attached to every notification this service
// schedules. It is preferred over identifier parsing when matching.
type Payload struct {
	Kind            Kind   `json:"type"`
	ItemName        string `json:"itemName"`
	Owner           string `json:"owner"`
	DaysUntilExpiry int    `json:"daysUntilExpiry"`
}

// Content is what the device shows when the notification fires.
type Content struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Channel  string   `json:"channel,omitempty"`
	Category string   `json:"category,omitempty"`
	Sound    string   `json:"sound,omitempty"`
	Data     *Payload `json:"data,omitempty"`
}

// ScheduledNotification is one entry of the notification store.
// Entries are never updated in place: a change is cancel-then-recreate.
type ScheduledNotification struct {
	Identifier string    `json:"identifier"`
	TriggerAt  time.Time `json:"trigger_at"`
	Content    Content   `json:"content"`
}

// Key resolves the (kind, item, owner) triple for n. The payload wins; the
// identifier is parsed only for entries scheduled without one.
func (n ScheduledNotification) Key() (Key, bool) {
	if p := n.Content.Data; p != nil && p.Kind.Valid() && p.ItemName != "" {
		return Key{Kind: p.Kind, ItemName: p.ItemName, Owner: p.Owner}, true
	}
	return ParseIdentifier(n.Identifier)
}

// Owner returns the owner encoded in n, or "" when it cannot be resolved.
func (n ScheduledNotification) Owner() string {
	k, ok := n.Key()
	if !ok {
		return ""
	}
	return k.Owner
}

// PermissionStatus mirrors the OS notification permission states.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// ParsePermissionStatus maps s to a known status.
func ParsePermissionStatus(s string) (PermissionStatus, bool) {
	switch st := PermissionStatus(s); st {
	case PermissionGranted, PermissionDenied, PermissionUndetermined:
		return st, true
	}
	return "", false
}
