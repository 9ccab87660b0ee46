package handlers

import (
	"vn.io.arda/reminder/internal/kafka/registry"
)

const (
	TopicItemEvents = "item-events"
	TopicAuthEvents = "auth-events"
)

// Register is a convenience alias so each handler file calls Register(...)
// instead of registry.Register(...).
func Register(topic, eventType string, h registry.EventHandler) {
	registry.Register(topic, eventType, h)
}
