package handlers

import (
	"encoding/json"
	"time"

	"vn.io.arda/reminder/internal/domain"
)

func init() {
	for _, t := range []domain.EventType{
		domain.EventItemActivated,
		domain.EventItemRenewed,
		domain.EventItemDurationUpdated,
		domain.EventItemDeactivated,
	} {
		Register(TopicItemEvents, string(t), handleItemEvent)
	}
}

type itemEnv struct {
	EventType string `json:"eventType"`
	EventID   string `json:"eventId"`
	Payload   struct {
		Name         string    `json:"name"`
		Owner        string    `json:"owner"`
		DurationDays int       `json:"durationDays"`
		CreatedAt    time.Time `json:"createdAt"`
		ExpiredAt    time.Time `json:"expiredAt"`
		Category     string    `json:"category"`
		Description  string    `json:"description"`
		Icon         string    `json:"icon"`
		Link         string    `json:"link"`
	} `json:"payload"`
}

func handleItemEvent(data []byte) *domain.Event {
	var env itemEnv
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	p := env.Payload
	if p.Name == "" || p.Owner == "" {
		return nil
	}

	ev := &domain.Event{
		Type:     domain.EventType(env.EventType),
		EventID:  env.EventID,
		Owner:    p.Owner,
		ItemName: p.Name,
	}
	// Without an expiry the service reads the item store instead.
	if !p.ExpiredAt.IsZero() {
		ev.Item = &domain.Item{
			Name:         p.Name,
			Owner:        p.Owner,
			DurationDays: p.DurationDays,
			CreatedAt:    p.CreatedAt,
			ExpiredAt:    p.ExpiredAt,
			Category:     domain.Category(p.Category),
			Description:  p.Description,
			Icon:         p.Icon,
			Link:         p.Link,
		}
	}
	return ev
}
