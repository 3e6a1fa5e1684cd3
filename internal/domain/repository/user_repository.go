package repository

import (
	"context"

	"farewatch-service/internal/domain/entity"
)

// UserRepository defines the interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
