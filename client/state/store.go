// Package state holds the in-memory task collection a UI renders from and
// mediates every mutation through an optimistic apply / confirm-or-rollback
// protocol: changes land locally before the server answers, a failure
// restores the exact prior state, and a success always adopts the server's
// authoritative record.
package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasklite/backend/domain"
)

// API is the task backend the store mutates against. *client.Client
// satisfies it; tests substitute fakes to simulate failures.
type API interface {
	GetAll(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, payload domain.CreateTaskPayload) (*domain.Task, error)
	Update(ctx context.Context, id string, payload domain.UpdateTaskPayload) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// Store is an injectable state container over {tasks, loading, lastError}.
// It is not a singleton: create one per UI root.
type Store struct {
	api    API
	logger *zap.Logger

	mu      sync.Mutex
	tasks   []domain.Task
	loading bool
	lastErr string
}

// New creates an empty store bound to the given API.
func New(api API, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:    api,
		logger: logger,
		tasks:  []domain.Task{},
	}
}

// Load performs the initial fetch. While the fetch is pending Loading
// reports true. If ctx is cancelled before the response lands, the result
// is discarded entirely: a torn-down UI must never receive late state.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	tasks, err := s.api.GetAll(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = errMessage(err, "failed to fetch tasks")
		return err
	}
	s.tasks = tasks
	return nil
}

// Create prepends an optimistic placeholder immediately, then replaces it
// with the server record on success or removes it on failure.
func (s *Store) Create(ctx context.Context, payload domain.CreateTaskPayload) error {
	priority := payload.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	now := time.Now().UTC()
	placeholder := domain.Task{
		ID:        "temp-" + uuid.NewString(),
		Title:     payload.Title,
		Completed: false,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.lastErr = ""
	s.tasks = append([]domain.Task{placeholder}, s.tasks...)
	s.mu.Unlock()

	created, err := s.api.Create(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// The task was never created server-side; drop the placeholder.
		if idx := s.indexOf(placeholder.ID); idx != -1 {
			s.tasks = removeAt(s.tasks, idx)
		}
		s.lastErr = errMessage(err, "failed to create task")
		return err
	}
	if idx := s.indexOf(placeholder.ID); idx != -1 {
		s.tasks[idx] = *created
	}
	return nil
}

// Update applies the partial payload locally, then adopts the server record
// on success or restores the exact pre-mutation record on failure. Unknown
// IDs are a no-op.
func (s *Store) Update(ctx context.Context, id string, payload domain.UpdateTaskPayload) error {
	s.mu.Lock()
	s.lastErr = ""
	idx := s.indexOf(id)
	if idx == -1 {
		s.mu.Unlock()
		return nil
	}
	// Value copy taken before the optimistic apply; this is the
	// compensating state for rollback.
	previous := s.tasks[idx]

	optimistic := previous
	if payload.Title != nil {
		optimistic.Title = *payload.Title
	}
	if payload.Completed != nil {
		optimistic.Completed = *payload.Completed
	}
	if payload.Priority != nil {
		optimistic.Priority = *payload.Priority
	}
	s.tasks[idx] = optimistic
	s.mu.Unlock()

	updated, err := s.api.Update(ctx, id, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if i := s.indexOf(id); i != -1 {
			s.tasks[i] = previous
		}
		s.lastErr = errMessage(err, "failed to update task")
		return err
	}
	if i := s.indexOf(id); i != -1 {
		s.tasks[i] = *updated
	}
	return nil
}

// Toggle flips the completed flag via Update.
func (s *Store) Toggle(ctx context.Context, id string, currentCompleted bool) error {
	completed := !currentCompleted
	return s.Update(ctx, id, domain.UpdateTaskPayload{Completed: &completed})
}

// Delete removes the task locally first; on failure the record is
// reinserted at its original index, not appended.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.lastErr = ""
	idx := s.indexOf(id)
	var removed domain.Task
	if idx != -1 {
		removed = s.tasks[idx]
		s.tasks = removeAt(s.tasks, idx)
	}
	s.mu.Unlock()

	err := s.api.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if idx != -1 {
			s.tasks = insertAt(s.tasks, idx, removed)
		}
		s.lastErr = errMessage(err, "failed to delete task")
		return err
	}
	return nil
}

// DeleteAll clears the collection locally first and restores the full
// captured collection on failure.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	s.lastErr = ""
	previous := s.tasks
	s.tasks = []domain.Task{}
	s.mu.Unlock()

	err := s.api.DeleteAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.tasks = previous
		s.lastErr = errMessage(err, "failed to delete all tasks")
		return err
	}
	return nil
}

// Tasks returns a snapshot of the collection in server order (newest first).
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Display returns a snapshot ordered for rendering: incomplete tasks before
// completed ones, stable otherwise.
func (s *Store) Display() []domain.Task {
	tasks := s.Tasks()
	sort.SliceStable(tasks, func(i, j int) bool {
		return !tasks[i].Completed && tasks[j].Completed
	})
	return tasks
}

// Loading reports whether the initial fetch is still pending.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last surfaced error message, empty if none.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError resets the last-error slot.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(tasks []domain.Task, idx int) []domain.Task {
	out := make([]domain.Task, 0, len(tasks)-1)
	out = append(out, tasks[:idx]...)
	out = append(out, tasks[idx+1:]...)
	return out
}

func insertAt(tasks []domain.Task, idx int, task domain.Task) []domain.Task {
	if idx > len(tasks) {
		idx = len(tasks)
	}
	out := make([]domain.Task, 0, len(tasks)+1)
	out = append(out, tasks[:idx]...)
	out = append(out, task)
	out = append(out, tasks[idx:]...)
	return out
}

func errMessage(err error, fallback string) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
