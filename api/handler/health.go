package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklite/backend/api/transport"
	"github.com/tasklite/backend/pkg/httpcontext"
)

// Pinger reports whether the backing task store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	baseHandler
	store   Pinger
	appName string
	started time.Time
}

func NewHealthHandler(store Pinger, appName string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
		appName:     appName,
		started:     time.Now().UTC(),
	}
}

// Check handles GET /health.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	storageOK := true
	if h.store != nil {
		if err := h.store.Ping(stdCtx); err != nil {
			h.logger.Warn("storage ping failed", zap.Error(err))
			storageOK = false
		}
	}

	payload := map[string]interface{}{
		"app":       h.appName,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"storage":   storageOK,
	}

	if storageOK {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("storage unavailable"))
}
