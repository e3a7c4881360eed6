// Package jsonfile persists the task collection as a single pretty-printed
// JSON array on disk. Every mutation reads the whole file, rewrites the whole
// file, and is guarded by an in-process mutex only: the store assumes a single
// writer process. Concurrent writer processes race with last-write-wins and
// no locking; that is a known limitation of the flat-file design.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasklite/backend/domain"
)

// TaskRepository implements repository.TaskRepository over a JSON file.
type TaskRepository struct {
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// New creates a repository backed by the JSON file at path. The file and its
// parent directory are created lazily on first access.
func New(path string, logger *zap.Logger) *TaskRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskRepository{
		path:   path,
		logger: logger,
	}
}

// ensureFile creates the data directory and an empty collection file if
// either is missing.
func (r *TaskRepository) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(r.path, []byte("[]"), 0o644)
}

// readTasks loads the collection from disk. Content that is not valid JSON
// or not an array degrades to an empty collection: corruption is treated as
// "no data", not as a fatal error. A warning is logged so the degradation is
// at least observable.
func (r *TaskRepository) readTasks() ([]domain.Task, error) {
	if err := r.ensureFile(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		r.logger.Warn("task file unreadable, treating as empty collection",
			zap.String("path", r.path), zap.Error(err))
		return []domain.Task{}, nil
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (r *TaskRepository) writeTasks(tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// GetAll returns the collection ordered by creation time, newest first.
func (r *TaskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.readTasks()
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(tasks)
	return tasks, nil
}

// GetByID returns the task or domain.ErrTaskNotFound.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.readTasks()
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			task := tasks[i]
			return &task, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

// Create appends a new task and persists the collection.
func (r *TaskRepository) Create(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	priority := payload.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.readTasks()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Completed: false,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tasks = append(tasks, task)
	if err := r.writeTasks(tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update merges only the provided fields into the stored record, refreshes
// UpdatedAt and persists. Returns domain.ErrTaskNotFound for an unknown id.
func (r *TaskRepository) Update(ctx context.Context, id string, payload domain.UpdateTaskPayload) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.readTasks()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range tasks {
		if tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, domain.ErrTaskNotFound
	}

	task := tasks[idx]
	if payload.Title != nil {
		task.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Completed != nil {
		task.Completed = *payload.Completed
	}
	if payload.Priority != nil {
		task.Priority = *payload.Priority
	}

	now := time.Now().UTC()
	if !now.After(task.UpdatedAt) {
		// Clock did not advance; keep UpdatedAt strictly increasing.
		now = task.UpdatedAt.Add(time.Nanosecond)
	}
	task.UpdatedAt = now

	tasks[idx] = task
	if err := r.writeTasks(tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes the record if present and reports whether a removal occurred.
func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.readTasks()
	if err != nil {
		return false, err
	}

	idx := -1
	for i := range tasks {
		if tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	tasks = append(tasks[:idx], tasks[idx+1:]...)
	if err := r.writeTasks(tasks); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteAll replaces the collection with an empty one.
func (r *TaskRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureFile(); err != nil {
		return err
	}
	return r.writeTasks([]domain.Task{})
}

// Ping verifies the data file can be created and read.
func (r *TaskRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.readTasks()
	return err
}
