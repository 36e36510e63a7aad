package repository

import (
	"context"
	"time"

	"github.com/orclabs/elt-orchestrator/internal/domain"
)

type RunRepository interface {
	Create(ctx context.Context, jobID string, status domain.RunStatus, triggeredBy domain.TriggerSource) (*domain.JobRun, error)

	// ClaimNextQueued atomically moves the oldest queued run to running and
	// stamps started_at. Concurrent callers never receive the same run.
	// Returns (nil, nil) when the queue is empty.
	ClaimNextQueued(ctx context.Context) (*domain.JobRun, error)

	// MarkSuccess and MarkFailed close out a running run and stamp
	// finished_at. Terminal rows are never rewritten.
	MarkSuccess(ctx context.Context, runID string) error
	MarkFailed(ctx context.Context, runID string, errMsg string) error

	// LastForJob returns the newest run by created_at, or (nil, nil) when
	// the job has never run.
	LastForJob(ctx context.Context, jobID string) (*domain.JobRun, error)

	List(ctx context.Context) ([]*domain.JobRun, error)
	GetByID(ctx context.Context, runID string) (*domain.JobRun, error)

	// FailStale fails running runs whose started_at predates cutoff.
	// Used by the reaper to clean up after crashed workers.
	FailStale(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
