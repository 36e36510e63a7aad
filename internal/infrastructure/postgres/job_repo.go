package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orclabs/elt-orchestrator/internal/domain"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `job_id, job_name, description, schedule, is_active, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, job *domain.JobDefinition, tasks []domain.NewTask) (*domain.JobDefinition, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO job_definitions (job_name, description, schedule, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+jobColumns,
		job.Name, job.Description, job.Schedule, job.IsActive,
	)

	created, err := scanJob(row)
	if err != nil {
		return nil, err
	}

	for i, task := range tasks {
		_, err := tx.Exec(ctx, `
			INSERT INTO task_definitions (job_id, task_order, extractor_config, loader_config)
			VALUES ($1, $2, $3, $4)`,
			created.ID, i+1, task.ExtractorConfig, task.LoaderConfig,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, domain.ErrTaskOrderConflict
			}
			return nil, fmt.Errorf("insert task %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (r *JobRepository) GetByID(ctx context.Context, jobID string) (*domain.JobDefinition, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_definitions WHERE job_id = $1`, jobID)
	return scanJob(row)
}

func (r *JobRepository) FindByName(ctx context.Context, name string) (*domain.JobDefinition, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_definitions WHERE job_name = $1 ORDER BY created_at ASC LIMIT 1`, name)
	return scanJob(row)
}

func (r *JobRepository) List(ctx context.Context) ([]*domain.JobDefinition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM job_definitions ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.JobDefinition
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) GetTasks(ctx context.Context, jobID string) ([]*domain.TaskDefinition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT task_id, job_id, task_order, extractor_config, loader_config, created_at, updated_at
		FROM task_definitions
		WHERE job_id = $1
		ORDER BY task_order ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.TaskDefinition
	for rows.Next() {
		var t domain.TaskDefinition
		err := rows.Scan(
			&t.ID, &t.JobID, &t.TaskOrder, &t.ExtractorConfig, &t.LoaderConfig,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.JobDefinition, error) {
	var j domain.JobDefinition
	err := row.Scan(
		&j.ID, &j.Name, &j.Description, &j.Schedule, &j.IsActive,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}
