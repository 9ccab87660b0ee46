package application

import (
	"context"
	"time"

	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/messages"
	"vn.io.arda/reminder/internal/metrics"
)

const (
	// DefaultReminderLeadDays is how long before expiry the reminder fires.
	DefaultReminderLeadDays = 7

	ChannelReminders = "spazzolino-reminders"
	ChannelExpiry    = "spazzolino-expiry"

	CategoryReminder = "REMINDER_CATEGORY"
	CategoryExpiry   = "EXPIRY_CATEGORY"

	defaultSound = "default"
)

// SyncLocker serializes synchronization passes per owner.
// TryLock returns domain.ErrSyncInProgress when another pass holds the lock.
type SyncLocker interface {
	TryLock(ctx context.Context, owner string) (unlock func(context.Context) error, err error)
}

// Service holds the scheduling use-cases. It keeps no scheduling state of
// its own: every operation re-reads the notification store.
type Service struct {
	store       domain.NotificationStore
	items       domain.ItemSource
	permissions domain.PermissionStore

	locker  SyncLocker
	metrics *metrics.Metrics
	now     func() time.Time

	leadDays    int
	concurrency int
	locale      messages.Locale
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocker installs a per-owner sync lock.
func WithLocker(l SyncLocker) Option {
	return func(s *Service) { s.locker = l }
}

// WithMetrics installs prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithReminderLeadDays overrides the reminder offset.
func WithReminderLeadDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.leadDays = days
		}
	}
}

// WithBulkConcurrency bounds the number of items scheduled in parallel.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLocale selects the notification copy.
func WithLocale(l messages.Locale) Option {
	return func(s *Service) { s.locale = l }
}

// NewService creates a new application Service.
func NewService(store domain.NotificationStore, items domain.ItemSource, permissions domain.PermissionStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		items:       items,
		permissions: permissions,
		locker:      noopLocker{},
		now:         time.Now,
		leadDays:    DefaultReminderLeadDays,
		concurrency: 1,
		locale:      messages.DefaultLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type noopLocker struct{}

func (noopLocker) TryLock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
