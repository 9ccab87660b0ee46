package handlers

import (
	"encoding/json"

	"vn.io.arda/reminder/internal/domain"
)

func init() {
	Register(TopicAuthEvents, string(domain.EventUserSignedIn), handleSessionEvent)
	Register(TopicAuthEvents, string(domain.EventUserSignedOut), handleSessionEvent)
}

type sessionEnv struct {
	EventType string `json:"eventType"`
	EventID   string `json:"eventId"`
	Payload   struct {
		UserID string `json:"userId"`
	} `json:"payload"`
}

func handleSessionEvent(data []byte) *domain.Event {
	var env sessionEnv
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if env.Payload.UserID == "" {
		return nil
	}
	return &domain.Event{
		Type:    domain.EventType(env.EventType),
		EventID: env.EventID,
		Owner:   env.Payload.UserID,
	}
}
