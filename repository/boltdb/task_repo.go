// Package boltdb is an alternative task store backed by a BoltDB file,
// for deployments that prefer transactional single-file storage over the
// default human-readable JSON array.
package boltdb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/tasklite/backend/domain"
)

var bucketTasks = []byte("tasks")

// TaskRepository implements repository.TaskRepository over a bbolt database.
type TaskRepository struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the tasks bucket exists.
func Open(path string) (*TaskRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTasks)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &TaskRepository{db: db}, nil
}

// Close releases the underlying database file.
func (r *TaskRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *TaskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				// Skip records that no longer decode instead of failing
				// the whole listing.
				return nil
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(tasks)
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTasks).Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		return json.Unmarshal(raw, &task)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

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

	now := time.Now().UTC()
	task := domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Completed: false,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	raw, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	if err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).Put([]byte(task.ID), raw)
	}); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, payload domain.UpdateTaskPayload) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task domain.Task
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrTaskNotFound
		}
		if err := json.Unmarshal(raw, &task); err != nil {
			return err
		}

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
			now = task.UpdatedAt.Add(time.Nanosecond)
		}
		task.UpdatedAt = now

		updated, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), updated)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	deleted := false
	err := r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		if bucket.Get([]byte(id)) == nil {
			return nil
		}
		deleted = true
		return bucket.Delete([]byte(id))
	})
	return deleted, err
}

func (r *TaskRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketTasks); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketTasks)
		return err
	})
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketTasks) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}
