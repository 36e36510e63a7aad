package repository

import (
	"context"

	"github.com/orclabs/elt-orchestrator/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
