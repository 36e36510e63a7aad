package usecase

import (
	"context"
	"fmt"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/metrics"
	"github.com/orclabs/elt-orchestrator/internal/repository"
	"github.com/orclabs/elt-orchestrator/internal/scheduler"
)

// JobUsecase is the write-side aggregate over job definitions: a job and
// its tasks are created together or not at all.
type JobUsecase struct {
	jobs repository.JobRepository
	runs repository.RunRepository
}

func NewJobUsecase(jobs repository.JobRepository, runs repository.RunRepository) *JobUsecase {
	return &JobUsecase{jobs: jobs, runs: runs}
}

type CreateJobInput struct {
	Name        string
	Description *string
	Schedule    string
	IsActive    bool
	Tasks       []domain.NewTask
}

func (u *JobUsecase) CreateJob(ctx context.Context, input CreateJobInput) (*domain.JobDefinition, error) {
	if err := scheduler.ValidateSchedule(input.Schedule); err != nil {
		return nil, err
	}

	job := &domain.JobDefinition{
		Name:        input.Name,
		Description: input.Description,
		Schedule:    input.Schedule,
		IsActive:    input.IsActive,
	}

	created, err := u.jobs.Create(ctx, job, input.Tasks)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return created, nil
}

// JobWithTasks is the read model for a single job.
type JobWithTasks struct {
	Job   *domain.JobDefinition    `json:"job"`
	Tasks []*domain.TaskDefinition `json:"tasks"`
}

func (u *JobUsecase) GetJob(ctx context.Context, jobID string) (*JobWithTasks, error) {
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	tasks, err := u.jobs.GetTasks(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	return &JobWithTasks{Job: job, Tasks: tasks}, nil
}

func (u *JobUsecase) ListJobs(ctx context.Context) ([]*domain.JobDefinition, error) {
	return u.jobs.List(ctx)
}

// TriggerRun enqueues a manual run for an existing job.
func (u *JobUsecase) TriggerRun(ctx context.Context, jobID string) (*domain.JobRun, error) {
	if _, err := u.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	run, err := u.runs.Create(ctx, jobID, domain.RunQueued, domain.TriggerManual)
	if err != nil {
		return nil, fmt.Errorf("trigger run: %w", err)
	}
	metrics.RunsEnqueuedTotal.WithLabelValues(string(domain.TriggerManual)).Inc()
	return run, nil
}
