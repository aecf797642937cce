package services

import (
	"context"
	"log/slog"
	"time"

	"expensetracker/internal/apperr"
)

// TokenCleaner removes stale reset requests.
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// ResetSweeper periodically runs a TokenCleaner until its context ends.
type ResetSweeper struct {
	cleaner  TokenCleaner
	interval time.Duration
	logger   *slog.Logger
}

func NewResetSweeper(cleaner TokenCleaner, interval time.Duration, logger *slog.Logger) *ResetSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetSweeper{cleaner: cleaner, interval: interval, logger: logger}
}

// Start launches the sweep loop and returns a channel closed when it exits.
// A non-positive interval disables sweeping.
func (s *ResetSweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		s.run(ctx)
	}()
	return done
}

func (s *ResetSweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reset sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reset sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.cleaner.CleanupExpiredTokens(ctx); err != nil && ctx.Err() == nil {
				apperr.LogError(s.logger, "reset sweep failed", err)
			}
		}
	}
}
