package memory

import (
	"context"
	"sort"
	"sync"

	"vn.io.arda/reminder/internal/domain"
)

// Items is an in-memory domain.ItemSource.
type Items struct {
	mu    sync.RWMutex
	items map[string]map[string]domain.Item // owner -> name -> item
}

// NewItems creates an Items source preloaded with items.
func NewItems(items ...domain.Item) *Items {
	s := &Items{items: make(map[string]map[string]domain.Item)}
	for _, it := range items {
		s.Put(it)
	}
	return s
}

// Put inserts or replaces an item.
func (s *Items) Put(it domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[it.Owner] == nil {
		s.items[it.Owner] = make(map[string]domain.Item)
	}
	s.items[it.Owner][it.Name] = it
}

// Remove deletes an item.
func (s *Items) Remove(owner, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[owner], name)
	if len(s.items[owner]) == 0 {
		delete(s.items, owner)
	}
}

func (s *Items) ListByOwner(_ context.Context, owner string) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Item, 0, len(s.items[owner]))
	for _, it := range s.items[owner] {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Items) Get(_ context.Context, owner, name string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[owner][name]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &it, nil
}

func (s *Items) Owners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for owner := range s.items {
		out = append(out, owner)
	}
	sort.Strings(out)
	return out, nil
}
