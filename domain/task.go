package domain

import (
	"sort"
	"time"
)

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the persisted to-do record.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTaskPayload carries the validated input for a new task.
// An empty Priority means "use the default".
type CreateTaskPayload struct {
	Title    string
	Priority Priority
}

// UpdateTaskPayload is a sparse partial update: only non-nil fields
// are applied, absent fields are never touched.
type UpdateTaskPayload struct {
	Title     *string
	Completed *bool
	Priority  *Priority
}

// Empty reports whether the payload carries no fields at all.
func (p UpdateTaskPayload) Empty() bool {
	return p.Title == nil && p.Completed == nil && p.Priority == nil
}

// SortNewestFirst orders tasks by creation time, newest first.
// The sort is stable so equal timestamps keep their relative order.
func SortNewestFirst(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
