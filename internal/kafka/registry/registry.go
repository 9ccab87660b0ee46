// Package registry provides a lightweight event handler registry for Kafka events.
// Each handler file registers itself via init(), so the consumer does not change
// when a new event type is added.
package registry

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
)

// EventHandler maps raw Kafka message bytes to a domain event.
// Returning nil means "skip this message".
type EventHandler func(data []byte) *domain.Event

var handlers = map[string]EventHandler{}

// Register binds a handler to a {topic}:{eventType} key.
// Panics on duplicate registration to catch wiring mistakes early.
func Register(topic, eventType string, h EventHandler) {
	key := topic + ":" + eventType
	if _, exists := handlers[key]; exists {
		panic("registry: duplicate handler registered for key: " + key)
	}
	handlers[key] = h
}

// Dispatch looks up and calls the handler for topic + the message's eventType.
// Returns nil if no handler is registered or data cannot be parsed.
func Dispatch(topic string, data []byte) *domain.Event {
	var probe struct {
		EventType string `json:"eventType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		log.Warn().Str("topic", topic).Err(err).Msg("registry: failed to probe eventType")
		return nil
	}

	key := topic + ":" + probe.EventType
	h, ok := handlers[key]
	if !ok {
		log.Debug().Str("key", key).Msg("registry: no handler registered")
		return nil
	}
	return h(data)
}

// Topics returns the topics that have at least one handler.
func Topics() []string {
	seen := map[string]bool{}
	var topics []string
	for key := range handlers {
		t, _, _ := strings.Cut(key, ":")
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	return topics
}
