package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/identity/internal/identity/store"
)

// HousekeepingService periodically soft-revokes ledger rows whose refresh
// window has lapsed and deletes expired credential tokens. Ledger rows are
// never hard-deleted; the ledger is audit history.
type HousekeepingService struct {
	Store      store.Store
	Logger     *slog.Logger
	Interval   time.Duration
	RefreshTTL time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, refreshTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:      st,
		Logger:     logger,
		Interval:   interval,
		RefreshTTL: refreshTTL,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs one housekeeping pass. Each step is independent; a
// failure in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	cutoff := time.Now().UTC().Add(-s.RefreshTTL)
	if revoked, err := s.Store.Tokens().RevokeLapsedTokens(ctx, cutoff); err != nil {
		s.Logger.Error("failed to revoke lapsed sessions", "error", err)
	} else if revoked > 0 {
		s.Logger.Info("revoked lapsed sessions", "count", revoked)
	}

	if deleted, err := s.Store.CredentialTokens().DeleteExpiredCredentialTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired credential tokens", "error", err)
	} else if deleted > 0 {
		s.Logger.Info("deleted expired credential tokens", "count", deleted)
	}
}
