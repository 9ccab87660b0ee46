package memory

import (
	"context"
	"sync"

	"vn.io.arda/reminder/internal/domain"
)

// Permissions is an in-memory domain.PermissionStore.
type Permissions struct {
	mu       sync.Mutex
	fallback domain.PermissionStatus
	statuses map[string]domain.PermissionStatus
}

// NewPermissions creates a store answering fallback for unknown owners.
func NewPermissions(fallback domain.PermissionStatus) *Permissions {
	if _, ok := domain.ParsePermissionStatus(string(fallback)); !ok {
		fallback = domain.PermissionUndetermined
	}
	return &Permissions{fallback: fallback, statuses: make(map[string]domain.PermissionStatus)}
}

func (p *Permissions) Status(_ context.Context, owner string) (domain.PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked(owner), nil
}

func (p *Permissions) Request(_ context.Context, owner string) (domain.PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statusLocked(owner) == domain.PermissionDenied {
		return domain.PermissionDenied, nil
	}
	p.statuses[owner] = domain.PermissionGranted
	return domain.PermissionGranted, nil
}

func (p *Permissions) SetStatus(_ context.Context, owner string, status domain.PermissionStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[owner] = status
	return nil
}

func (p *Permissions) statusLocked(owner string) domain.PermissionStatus {
	if st, ok := p.statuses[owner]; ok {
		return st
	}
	return p.fallback
}
