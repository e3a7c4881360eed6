package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/tasklite/backend/domain"
	"github.com/tasklite/backend/repository/jsonfile"
	taskUC "github.com/tasklite/backend/usecase/task"
)

func newTestHandler(t *testing.T) *TaskHandler {
	t.Helper()
	repo := jsonfile.New(filepath.Join(t.TempDir(), "tasks.json"), nil)
	return NewTaskHandler(taskUC.New(repo, nil), nil, nil)
}

func newRequestCtx(method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBody([]byte(body))
	}
	return ctx
}

type responseEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func createTask(t *testing.T, h *TaskHandler, body string) domain.Task {
	t.Helper()
	ctx := newRequestCtx(fasthttp.MethodPost, "/api/tasks", body)
	h.CreateTask(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode(), "body: %s", ctx.Response.Body())

	env := decodeEnvelope(t, ctx)
	var task domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	return task
}

func TestCreateTask(t *testing.T) {
	h := newTestHandler(t)

	task := createTask(t, h, `{"title":"  Test task  ","priority":"high"}`)
	assert.Equal(t, "Test task", task.Title)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.False(t, task.Completed)
	assert.NotEmpty(t, task.ID)
}

func TestCreateTask_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: "{oops", wantErr: "invalid JSON in request body"},
		{name: "empty body", body: "", wantErr: "invalid JSON in request body"},
		{name: "missing title", body: `{"priority":"low"}`, wantErr: "title is required"},
		{name: "blank title", body: `{"title":"   "}`, wantErr: "title cannot be empty"},
		{name: "title wrong type", body: `{"title":7}`, wantErr: "title must be a string"},
		{name: "bad priority", body: `{"title":"ok","priority":"asap"}`, wantErr: "priority must be one of: low, medium, high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			ctx := newRequestCtx(fasthttp.MethodPost, "/api/tasks", tt.body)
			h.CreateTask(ctx)

			assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
			env := decodeEnvelope(t, ctx)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestListTasks(t *testing.T) {
	h := newTestHandler(t)
	first := createTask(t, h, `{"title":"first"}`)
	second := createTask(t, h, `{"title":"second"}`)

	ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks", "")
	h.ListTasks(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	env := decodeEnvelope(t, ctx)
	require.True(t, env.Success)

	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)
}

func TestGetTask(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, `{"title":"find me"}`)

	ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks/"+created.ID, "")
	ctx.SetUserValue("id", created.ID)
	h.GetTask(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	env := decodeEnvelope(t, ctx)
	var task domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, created.ID, task.ID)
}

func TestGetTask_NotFound(t *testing.T) {
	h := newTestHandler(t)

	ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks/missing", "")
	ctx.SetUserValue("id", "missing")
	h.GetTask(ctx)

	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.False(t, env.Success)
	assert.Equal(t, "task not found", env.Error)
}

func TestUpdateTask(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, `{"title":"before"}`)

	ctx := newRequestCtx(fasthttp.MethodPatch, "/api/tasks/"+created.ID, `{"completed":true}`)
	ctx.SetUserValue("id", created.ID)
	h.UpdateTask(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	env := decodeEnvelope(t, ctx)
	var task domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.True(t, task.Completed)
	assert.Equal(t, "before", task.Title)
}

func TestUpdateTask_Errors(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, `{"title":"target"}`)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
		wantErr    string
	}{
		{name: "not found", id: "missing", body: `{"completed":true}`, wantStatus: http.StatusNotFound, wantErr: "task not found"},
		{name: "empty payload", id: created.ID, body: `{}`, wantStatus: http.StatusBadRequest, wantErr: "at least one field (title, completed or priority) must be provided"},
		{name: "malformed json", id: created.ID, body: "nope", wantStatus: http.StatusBadRequest, wantErr: "invalid JSON in request body"},
		{name: "completed wrong type", id: created.ID, body: `{"completed":"yes"}`, wantStatus: http.StatusBadRequest, wantErr: "completed must be a boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newRequestCtx(fasthttp.MethodPatch, "/api/tasks/"+tt.id, tt.body)
			ctx.SetUserValue("id", tt.id)
			h.UpdateTask(ctx)

			assert.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			env := decodeEnvelope(t, ctx)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestDeleteTask(t *testing.T) {
	h := newTestHandler(t)
	created := createTask(t, h, `{"title":"doomed"}`)

	ctx := newRequestCtx(fasthttp.MethodDelete, "/api/tasks/"+created.ID, "")
	ctx.SetUserValue("id", created.ID)
	h.DeleteTask(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))

	ctx = newRequestCtx(fasthttp.MethodDelete, "/api/tasks/"+created.ID, "")
	ctx.SetUserValue("id", created.ID)
	h.DeleteTask(ctx)
	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())
}

func TestDeleteAllTasks(t *testing.T) {
	h := newTestHandler(t)
	createTask(t, h, `{"title":"a"}`)
	createTask(t, h, `{"title":"b"}`)

	ctx := newRequestCtx(fasthttp.MethodDelete, "/api/tasks", "")
	h.DeleteAllTasks(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	ctx = newRequestCtx(fasthttp.MethodGet, "/api/tasks", "")
	h.ListTasks(ctx)
	env := decodeEnvelope(t, ctx)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	assert.Empty(t, tasks)
}

// brokenRepo fails every operation with a non-domain error.
type brokenRepo struct{}

var errDisk = errors.New("disk exploded: /secret/path")

func (brokenRepo) GetAll(context.Context) ([]domain.Task, error) { return nil, errDisk }
func (brokenRepo) GetByID(context.Context, string) (*domain.Task, error) {
	return nil, errDisk
}
func (brokenRepo) Create(context.Context, domain.CreateTaskPayload) (*domain.Task, error) {
	return nil, errDisk
}
func (brokenRepo) Update(context.Context, string, domain.UpdateTaskPayload) (*domain.Task, error) {
	return nil, errDisk
}
func (brokenRepo) Delete(context.Context, string) (bool, error) { return false, errDisk }
func (brokenRepo) DeleteAll(context.Context) error              { return errDisk }
func (brokenRepo) Ping(context.Context) error                   { return errDisk }

func TestUnexpectedErrorsAreGeneric500s(t *testing.T) {
	h := NewTaskHandler(taskUC.New(brokenRepo{}, nil), nil, nil)

	ctx := newRequestCtx(fasthttp.MethodGet, "/api/tasks", "")
	h.ListTasks(ctx)

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Error, "internal detail must not leak")
}
