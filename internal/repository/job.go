package repository

import (
	"context"

	"github.com/orclabs/elt-orchestrator/internal/domain"
)

// Consumers depend on interfaces, not the postgres implementation.
// This keeps the usecases swappable and lets tests pass in fakes.
type JobRepository interface {
	// Create persists the definition and its tasks in one transaction:
	// either everything lands or nothing does.
	Create(ctx context.Context, job *domain.JobDefinition, tasks []domain.NewTask) (*domain.JobDefinition, error)
	GetByID(ctx context.Context, jobID string) (*domain.JobDefinition, error)
	FindByName(ctx context.Context, name string) (*domain.JobDefinition, error)
	List(ctx context.Context) ([]*domain.JobDefinition, error)

	// GetTasks returns the job's tasks ordered by task_order ascending.
	GetTasks(ctx context.Context, jobID string) ([]*domain.TaskDefinition, error)
}
