// Package memory provides in-process implementations of the notification and
// permission stores. They back the "memory" store driver and the test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vn.io.arda/reminder/internal/domain"
)

// Store is an in-memory domain.NotificationStore keyed by identifier.
type Store struct {
	mu      sync.RWMutex
	entries map[string]domain.ScheduledNotification
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]domain.ScheduledNotification)}
}

// Schedule stores n, replacing any entry with the same identifier.
func (s *Store) Schedule(_ context.Context, n domain.ScheduledNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[n.Identifier] = n
	return nil
}

// Cancel removes the entry with the given identifier.
func (s *Store) Cancel(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, identifier)
	return nil
}

// List returns entries ordered by trigger time. An empty owner lists all.
func (s *Store) List(_ context.Context, owner string) ([]domain.ScheduledNotification, error) {
	return s.collect(func(n domain.ScheduledNotification) bool {
		return owner == "" || n.Owner() == owner
	}), nil
}

// Due returns entries whose trigger time is at or before now.
func (s *Store) Due(_ context.Context, now time.Time) ([]domain.ScheduledNotification, error) {
	return s.collect(func(n domain.ScheduledNotification) bool {
		return !n.TriggerAt.After(now)
	}), nil
}

// CancelIfDue removes the entry only if it still triggers at or before triggerAt.
func (s *Store) CancelIfDue(_ context.Context, identifier string, triggerAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.entries[identifier]
	if !ok || n.TriggerAt.After(triggerAt) {
		return false, nil
	}
	delete(s.entries, identifier)
	return true, nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) collect(keep func(domain.ScheduledNotification) bool) []domain.ScheduledNotification {
	s.mu.RLock()
	out := make([]domain.ScheduledNotification, 0, len(s.entries))
	for _, n := range s.entries {
		if keep(n) {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].Identifier < out[j].Identifier
		}
		return out[i].TriggerAt.Before(out[j].TriggerAt)
	})
	return out
}
