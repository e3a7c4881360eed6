package repository

import (
	"context"

	"github.com/tasklite/backend/domain"
)

// TaskRepository is the persistent task collection addressed by ID.
//
// Missing IDs are signalled with domain.ErrTaskNotFound on GetByID and
// Update, and with a false return on Delete.
type TaskRepository interface {
	GetAll(ctx context.Context) ([]domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error)
	Update(ctx context.Context, id string, payload domain.UpdateTaskPayload) (*domain.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
