package usecase

import (
	"context"

	"github.com/orclabs/elt-orchestrator/internal/domain"
	"github.com/orclabs/elt-orchestrator/internal/repository"
)

// RunUsecase is the read side over run history.
type RunUsecase struct {
	runs repository.RunRepository
}

func NewRunUsecase(runs repository.RunRepository) *RunUsecase {
	return &RunUsecase{runs: runs}
}

func (u *RunUsecase) ListRuns(ctx context.Context) ([]*domain.JobRun, error) {
	return u.runs.List(ctx)
}

func (u *RunUsecase) GetRun(ctx context.Context, runID string) (*domain.JobRun, error) {
	return u.runs.GetByID(ctx, runID)
}
