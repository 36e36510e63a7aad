package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/orclabs/elt-orchestrator/internal/metrics"
	"github.com/orclabs/elt-orchestrator/internal/repository"
)

// Reaper fails runs stuck in running after a worker crash. Runs have no
// heartbeat, so staleness is judged from started_at; the threshold must
// exceed the longest legitimate run.
type Reaper struct {
	runs       repository.RunRepository
	logger     *slog.Logger
	interval   time.Duration
	staleAfter time.Duration
}

func NewReaper(runs repository.RunRepository, logger *slog.Logger, interval, staleAfter time.Duration) *Reaper {
	return &Reaper{
		runs:       runs,
		logger:     logger.With("component", "reaper"),
		interval:   interval,
		staleAfter: staleAfter,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval, "stale_after", r.staleAfter)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper shut down")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	cutoff := time.Now().Add(-r.staleAfter)

	failed, err := r.runs.FailStale(ctx, cutoff, 100)
	if err != nil {
		r.logger.Error("fail stale runs", "error", err)
		return
	}
	if failed > 0 {
		metrics.ReaperFailedTotal.Add(float64(failed))
		r.logger.Warn("failed stale runs", "count", failed)
	}
}
