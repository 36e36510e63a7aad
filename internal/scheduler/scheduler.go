package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/metrics"
	"github.com/orclabs/elt-orchestrator/internal/repository"
)

// Scheduler scans active jobs each cycle and enqueues a run for every job
// whose cron schedule has come due since its last run.
type Scheduler struct {
	jobs     repository.JobRepository
	runs     repository.RunRepository
	logger   *slog.Logger
	interval time.Duration

	now func() time.Time // injectable for tests
}

func New(jobs repository.JobRepository, runs repository.RunRepository, logger *slog.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		runs:     runs,
		logger:   logger.With("component", "scheduler"),
		interval: interval,
		now:      time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shut down")
			return
		case <-ticker.C:
			s.Cycle(ctx)
		}
	}
}

// Cycle runs one scheduling pass. Anchoring "next due" on the last run's
// creation time keeps back-to-back cycles from enqueueing duplicates: the
// first cycle past a cron boundary creates a run, and later cycles see
// that fresher anchor and compute a future due time.
func (s *Scheduler) Cycle(ctx context.Context) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		s.logger.Error("list jobs", "error", err)
		return
	}

	for _, job := range jobs {
		if !job.IsActive || job.Schedule == domain.ScheduleManual {
			continue
		}

		sched, err := ParseSchedule(job.Schedule)
		if err != nil {
			s.logger.Error("invalid schedule, skipping job",
				"job_id", job.ID, "job_name", job.Name, "schedule", job.Schedule, "error", err)
			continue
		}

		last, err := s.runs.LastForJob(ctx, job.ID)
		if err != nil {
			s.logger.Error("get last run", "job_id", job.ID, "error", err)
			continue
		}

		anchor := job.CreatedAt
		if last != nil {
			anchor = last.CreatedAt
		}

		next := sched.Next(anchor)
		if next.After(s.now()) {
			continue
		}

		run, err := s.runs.Create(ctx, job.ID, domain.RunQueued, domain.TriggerScheduler)
		if err != nil {
			s.logger.Error("enqueue run", "job_id", job.ID, "error", err)
			continue
		}
		metrics.RunsEnqueuedTotal.WithLabelValues(string(domain.TriggerScheduler)).Inc()
		s.logger.Info("run enqueued",
			"job_id", job.ID, "job_name", job.Name, "run_id", run.ID, "due_at", next)
	}
}
