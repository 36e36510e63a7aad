package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	ctxlog "github.com/orclabs/elt-orchestrator/internal/log"
	"github.com/orclabs/elt-orchestrator/internal/metrics"
	"github.com/orclabs/elt-orchestrator/internal/notify"
	"github.com/orclabs/elt-orchestrator/internal/repository"
)

// Pool claims queued runs and dispatches one executor goroutine per run.
// After a successful claim it polls again immediately; the idle poll
// interval only applies to an empty queue or a failed claim.
type Pool struct {
	runs         repository.RunRepository
	executor     *Executor
	notifier     *notify.Notifier
	logger       *slog.Logger
	pollInterval time.Duration
	slots        chan struct{}
	wg           sync.WaitGroup
}

func NewPool(
	runs repository.RunRepository,
	executor *Executor,
	notifier *notify.Notifier,
	logger *slog.Logger,
	pollInterval time.Duration,
	concurrency int,
) *Pool {
	return &Pool{
		runs:         runs,
		executor:     executor,
		notifier:     notifier,
		logger:       logger.With("component", "worker_pool"),
		pollInterval: pollInterval,
		slots:        make(chan struct{}, concurrency),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("worker pool started",
		"poll_interval", p.pollInterval, "concurrency", cap(p.slots))

	for ctx.Err() == nil {
		run, err := p.runs.ClaimNextQueued(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("claim next queued run", "error", err)
			p.idle(ctx)
			continue
		}
		if run == nil {
			p.idle(ctx)
			continue
		}

		metrics.RunsClaimedTotal.Inc()
		metrics.RunPickupLatency.Observe(time.Since(run.CreatedAt).Seconds())

		select {
		case p.slots <- struct{}{}:
		case <-ctx.Done():
			// shutdown before dispatch: the run stays running and the
			// reaper picks it up later
			p.logger.Warn("shutdown before dispatch", "run_id", run.ID)
		}
		if ctx.Err() != nil {
			break
		}

		p.wg.Add(1)
		go func(run *domain.JobRun) {
			defer p.wg.Done()
			defer func() { <-p.slots }()
			p.runOne(ctx, run)
		}(run)
	}

	p.wg.Wait()
	p.logger.Info("worker pool shut down")
}

func (p *Pool) runOne(ctx context.Context, run *domain.JobRun) {
	ctx = ctxlog.WithRun(ctx, run.ID, run.JobID)
	p.logger.InfoContext(ctx, "executing run", "triggered_by", run.TriggeredBy)

	metrics.RunsInFlight.Inc()
	defer metrics.RunsInFlight.Dec()

	start := time.Now()
	err := p.executor.Execute(ctx, run)
	duration := time.Since(start)

	if err == nil {
		if markErr := p.runs.MarkSuccess(ctx, run.ID); markErr != nil {
			p.logger.ErrorContext(ctx, "mark run success", "error", markErr)
		}
		metrics.RunDuration.WithLabelValues("success").Observe(duration.Seconds())
		metrics.RunsCompletedTotal.WithLabelValues("success").Inc()
		p.logger.InfoContext(ctx, "run succeeded", "duration", duration)
		return
	}

	if markErr := p.runs.MarkFailed(ctx, run.ID, err.Error()); markErr != nil {
		p.logger.ErrorContext(ctx, "mark run failed", "error", markErr)
	}
	metrics.RunDuration.WithLabelValues("failed").Observe(duration.Seconds())
	metrics.RunsCompletedTotal.WithLabelValues("failed").Inc()
	p.logger.ErrorContext(ctx, "run failed", "duration", duration, "error", err)

	if p.notifier != nil {
		p.notifier.RunFailed(ctx, run.ID, run.JobID, err.Error())
	}
}

func (p *Pool) idle(ctx context.Context) {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
