package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	pingStore func(ctx context.Context) error
}

// NewHealthHandler takes the store's ping function; nil means the store
// has no connectivity to check (memory mode).
func NewHealthHandler(pingStore func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{pingStore: pingStore}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if h.pingStore != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pingStore(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]string{"status": status})
}
