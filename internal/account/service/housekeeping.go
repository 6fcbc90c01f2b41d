package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/mindful/internal/account/recovery"
)

// HousekeepingService periodically purges expired recovery sessions so the
// in-process store does not grow with abandoned flows.
type HousekeepingService struct {
	Sessions recovery.SessionStore
	Logger   *slog.Logger
	Interval time.Duration

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to one minute.
func NewHousekeepingService(sessions recovery.SessionStore, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop is called.
func (s *HousekeepingService) Start() {
	s.started = true
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress purge has finished. It is safe to call
// more than once, and on a service that was never started.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if !s.started {
			return
		}
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one purge pass.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	n, err := s.Sessions.PurgeExpired(ctx)
	if err != nil {
		s.Logger.Error("failed to purge recovery sessions", "error", err)
		return
	}
	if n > 0 {
		s.Logger.Info("purged expired recovery sessions", "count", n)
	}
}
