package domain

// EventType is the routing key of an inbound lifecycle or session event.
type EventType string

const (
	EventItemActivated       EventType = "ITEM_ACTIVATED"
	EventItemRenewed         EventType = "ITEM_RENEWED"
	EventItemDurationUpdated EventType = "ITEM_DURATION_UPDATED"
	EventItemDeactivated     EventType = "ITEM_DEACTIVATED"
	EventUserSignedIn        EventType = "USER_SIGNED_IN"
	EventUserSignedOut       EventType = "USER_SIGNED_OUT"
)

// Event is produced by Kafka handlers and HTTP callers and consumed by the
// application Service.
type Event struct {
	Type    EventType
	EventID string
	Owner   string
	// ItemName identifies the item for item events. Item may be nil when the
	// producer only knows the name; the service then reads the item store.
	ItemName string
	Item     *Item
}

// IsItemEvent reports whether e targets a single item.
func (e Event) IsItemEvent() bool {
	switch e.Type {
	case EventItemActivated, EventItemRenewed, EventItemDurationUpdated, EventItemDeactivated:
		return true
	}
	return false
}
