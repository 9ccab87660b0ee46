package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"vn.io.arda/reminder/internal/domain"
)

// HasPermission reports whether owner granted notification permission.
// Store errors count as not granted.
func (s *Service) HasPermission(ctx context.Context, owner string) bool {
	st, err := s.permissions.Status(ctx, owner)
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("failed to read notification permission")
		return false
	}
	return st == domain.PermissionGranted
}

// RequestPermission asks for notification permission and reports whether it
// is granted afterwards.
func (s *Service) RequestPermission(ctx context.Context, owner string) bool {
	st, err := s.permissions.Request(ctx, owner)
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("failed to request notification permission")
		return false
	}
	return st == domain.PermissionGranted
}

// ReportPermission records the status observed on the device.
func (s *Service) ReportPermission(ctx context.Context, owner string, status domain.PermissionStatus) error {
	if _, ok := domain.ParsePermissionStatus(string(status)); !ok {
		return fmt.Errorf("unknown permission status %q", status)
	}
	if err := s.permissions.SetStatus(ctx, owner, status); err != nil {
		return fmt.Errorf("set permission status: %w", err)
	}
	log.Info().Str("owner", owner).Str("status", string(status)).Msg("notification permission reported")
	return nil
}

// Initialize is the sign-in flow: request permission and, once granted,
// synchronize the owner's notifications.
func (s *Service) Initialize(ctx context.Context, owner string) NotificationState {
	if owner == "" {
		return NotificationState{}
	}

	if !s.RequestPermission(ctx, owner) {
		log.Info().Str("owner", owner).Msg("notification permission not granted")
		return NotificationState{Initialized: true, Error: "notification permission not granted"}
	}

	res := s.SyncUser(ctx, owner)
	log.Info().Str("owner", owner).Int("synchronized", res.Synchronized).Msg("notifications initialized")
	return NotificationState{Initialized: true, HasPermissions: true, Sync: &res}
}
