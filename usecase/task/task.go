package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasklite/backend/domain"
	"github.com/tasklite/backend/repository"
)

// UseCase orchestrates task operations over the configured store.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return uc.tasks.GetAll(ctx)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error) {
	created, err := uc.tasks.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("task created",
		zap.String("task_id", created.ID),
		zap.String("priority", string(created.Priority)))
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, id string, payload domain.UpdateTaskPayload) (*domain.Task, error) {
	updated, err := uc.tasks.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("task updated", zap.String("task_id", id))
	return updated, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) (bool, error) {
	deleted, err := uc.tasks.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		uc.logger.Info("task deleted", zap.String("task_id", id))
	}
	return deleted, nil
}

func (uc *UseCase) DeleteAllTasks(ctx context.Context) error {
	if err := uc.tasks.DeleteAll(ctx); err != nil {
		return err
	}
	uc.logger.Info("all tasks deleted")
	return nil
}
