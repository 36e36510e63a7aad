package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	ctxlog "github.com/orclabs/elt-orchestrator/internal/log"
	"github.com/orclabs/elt-orchestrator/internal/pipeline"
	"github.com/orclabs/elt-orchestrator/internal/pipeline/extractor"
	"github.com/orclabs/elt-orchestrator/internal/pipeline/loader"
	"github.com/orclabs/elt-orchestrator/internal/repository"
)

const (
	// Whole-run retry policy: the task sequence restarts from the first
	// task on every attempt, so a retried run never skips the side effects
	// of earlier tasks.
	maxAttempts = 3
	retryDelay  = 5 * time.Second
)

// Executor drives one claimed run end-to-end: resolve the job's tasks,
// extract then load per task in order, retry the whole run on failure.
type Executor struct {
	jobs   repository.JobRepository
	logger *slog.Logger

	// injectable for tests
	newExtractor func(domain.DriverConfig) (pipeline.Extractor, error)
	newLoader    func(domain.DriverConfig) (pipeline.Loader, error)
	sleep        func(ctx context.Context, d time.Duration) error
	delay        time.Duration
}

func NewExecutor(jobs repository.JobRepository, logger *slog.Logger) *Executor {
	return &Executor{
		jobs:         jobs,
		logger:       logger.With("component", "executor"),
		newExtractor: extractor.New,
		newLoader:    loader.New,
		sleep:        sleepCtx,
		delay:        retryDelay,
	}
}

// Execute returns nil when every task of some attempt succeeded, otherwise
// the last attempt's error. A failure to fetch the job's tasks is returned
// at once, without retry.
func (e *Executor) Execute(ctx context.Context, run *domain.JobRun) error {
	// Tag the context so every record below — driver logs included —
	// carries the run identity.
	ctx = ctxlog.WithRun(ctx, run.ID, run.JobID)

	tasks, err := e.jobs.GetTasks(ctx, run.JobID)
	if err != nil {
		return fmt.Errorf("get tasks for job %s: %w", run.JobID, err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = e.runTasks(ctx, tasks)
		if lastErr == nil {
			e.logger.InfoContext(ctx, "run completed", "attempt", attempt)
			return nil
		}

		e.logger.ErrorContext(ctx, "run attempt failed",
			"attempt", attempt, "max_attempts", maxAttempts, "error", lastErr)

		if attempt < maxAttempts {
			if err := e.sleep(ctx, e.delay); err != nil {
				return lastErr
			}
		}
	}
	return lastErr
}

func (e *Executor) runTasks(ctx context.Context, tasks []*domain.TaskDefinition) error {
	for _, task := range tasks {
		ext, err := e.newExtractor(task.ExtractorConfig)
		if err != nil {
			return fmt.Errorf("task %d: %w", task.TaskOrder, err)
		}
		ld, err := e.newLoader(task.LoaderConfig)
		if err != nil {
			return fmt.Errorf("task %d: %w", task.TaskOrder, err)
		}

		table, err := ext.Extract(ctx)
		if err != nil {
			return fmt.Errorf("task %d: extract: %w", task.TaskOrder, err)
		}

		e.logger.DebugContext(ctx, "extracted table",
			"task_order", task.TaskOrder, "rows", table.NumRows())

		if err := ld.Load(ctx, table); err != nil {
			return fmt.Errorf("task %d: load: %w", task.TaskOrder, err)
		}
	}
	return nil
}

// sleepCtx waits out d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
