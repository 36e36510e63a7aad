package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orclabs/elt-orchestrator/internal/domain"
)

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

const runColumns = `run_id, job_id, status, triggered_by, started_at, finished_at, error_message, created_at, updated_at`

func (r *RunRepository) Create(ctx context.Context, jobID string, status domain.RunStatus, triggeredBy domain.TriggerSource) (*domain.JobRun, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO job_runs (job_id, status, triggered_by)
		VALUES ($1, $2, $3)
		RETURNING `+runColumns,
		jobID, status, triggeredBy,
	)
	return scanRun(row)
}

// ClaimNextQueued is the single-claim primitive of the whole system.
// FOR UPDATE SKIP LOCKED on the subquery means concurrent claimers pass
// over a row another transaction is taking, and the status filter on the
// outer UPDATE closes the window between select and update.
func (r *RunRepository) ClaimNextQueued(ctx context.Context) (*domain.JobRun, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE job_runs
		SET    status     = 'running',
		       started_at = NOW(),
		       updated_at = NOW()
		WHERE run_id = (
			SELECT run_id FROM job_runs
			WHERE  status = 'queued'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		AND status = 'queued'
		RETURNING `+runColumns)

	run, err := scanRun(row)
	if errors.Is(err, domain.ErrRunNotFound) {
		return nil, nil // empty queue is not an error
	}
	return run, err
}

func (r *RunRepository) MarkSuccess(ctx context.Context, runID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE job_runs
		SET status = 'success', finished_at = NOW(), updated_at = NOW()
		WHERE run_id = $1 AND status = 'running'`, runID)
	if err != nil {
		return fmt.Errorf("mark success: %w", err)
	}
	return nil
}

func (r *RunRepository) MarkFailed(ctx context.Context, runID string, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE job_runs
		SET status = 'failed', error_message = $2, finished_at = NOW(), updated_at = NOW()
		WHERE run_id = $1 AND status = 'running'`, runID, errMsg)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (r *RunRepository) LastForJob(ctx context.Context, jobID string) (*domain.JobRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+runColumns+` FROM job_runs
		WHERE job_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, jobID)

	run, err := scanRun(row)
	if errors.Is(err, domain.ErrRunNotFound) {
		return nil, nil
	}
	return run, err
}

func (r *RunRepository) List(ctx context.Context) ([]*domain.JobRun, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+runColumns+` FROM job_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.JobRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepository) GetByID(ctx context.Context, runID string) (*domain.JobRun, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM job_runs WHERE run_id = $1`, runID)
	return scanRun(row)
}

func (r *RunRepository) FailStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE job_runs
		SET    status        = 'failed',
		       error_message = 'stale run: worker lost',
		       finished_at   = NOW(),
		       updated_at    = NOW()
		WHERE run_id IN (
			SELECT run_id FROM job_runs
			WHERE  status     = 'running'
			  AND  started_at < $1
			ORDER BY started_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("fail stale runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanRun(row rowScanner) (*domain.JobRun, error) {
	var run domain.JobRun
	err := row.Scan(
		&run.ID, &run.JobID, &run.Status, &run.TriggeredBy,
		&run.StartedAt, &run.FinishedAt, &run.ErrorMessage,
		&run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &run, nil
}
