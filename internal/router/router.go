package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasklite/backend/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// Middleware wraps a request handler, e.g. for logging or panic recovery.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New builds the route table. Middlewares are applied to every route,
// outermost first.
func New(handlers Handlers, middlewares ...Middleware) *router.Router {
	r := router.New()

	r.GET("/health", wrap(handlers.Health.Check, middlewares))

	// Collection resource
	r.GET("/api/tasks", wrap(handlers.Task.ListTasks, middlewares))
	r.POST("/api/tasks", wrap(handlers.Task.CreateTask, middlewares))
	r.DELETE("/api/tasks", wrap(handlers.Task.DeleteAllTasks, middlewares))

	// Item resource
	r.GET("/api/tasks/{id}", wrap(handlers.Task.GetTask, middlewares))
	r.PATCH("/api/tasks/{id}", wrap(handlers.Task.UpdateTask, middlewares))
	r.DELETE("/api/tasks/{id}", wrap(handlers.Task.DeleteTask, middlewares))

	return r
}

func wrap(h fasthttp.RequestHandler, middlewares []Middleware) fasthttp.RequestHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
