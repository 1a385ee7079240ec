package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	syncer "shelflife/internal/sync"
)

// SyncScheduler runs full syncs on a fixed interval.
type SyncScheduler struct {
	reconciler *syncer.Reconciler
	interval   time.Duration
	logger     *logrus.Logger
}

// NewSyncScheduler creates a new sync scheduler.
func NewSyncScheduler(reconciler *syncer.Reconciler, interval time.Duration, logger *logrus.Logger) *SyncScheduler {
	return &SyncScheduler{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
	}
}

// Start begins the background sync loop. A tick that lands while a manual
// sync is running is skipped, not queued.
func (s *SyncScheduler) Start(ctx context.Context) {
	s.logger.WithField("interval", s.interval).Info("Sync scheduler started")

	// Run immediately on start
	s.run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sync scheduler stopped")
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *SyncScheduler) run(ctx context.Context) {
	if _, err := s.reconciler.FullSync(ctx); err != nil {
		if errors.Is(err, syncer.ErrSyncInProgress) {
			s.logger.Info("Scheduled sync skipped: sync already in progress")
			return
		}
		s.logger.WithError(err).Error("Scheduled sync failed")
	}
}
