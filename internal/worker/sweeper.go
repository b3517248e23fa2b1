package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the part of the lifecycle engine the periodic task needs.
type Sweeper interface {
	SweepAll(ctx context.Context) (int, error)
}

// RunPeriodicSweep archives expired jobs every interval until ctx is done.
// Reads still sweep on their own; this only tightens the staleness bound for
// jobs nobody reads.
func RunPeriodicSweep(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepOnce(ctx, sweeper, interval, logger)
		}
	}
}

// SweepOnce runs a single bounded sweep and logs the outcome.
func SweepOnce(ctx context.Context, sweeper Sweeper, timeout time.Duration, logger *zap.Logger) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	archived, err := sweeper.SweepAll(ctx)
	if err != nil {
		logger.Warn("periodic sweep failed", zap.Int("archived", archived), zap.Error(err))
		return archived, err
	}
	if archived > 0 {
		logger.Info("periodic sweep archived jobs", zap.Int("archived", archived))
	}
	return archived, nil
}
