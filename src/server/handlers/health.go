package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/highway-to-peak/server/src/server/storage"
)

// Pinger is implemented by stores that support health checks (e.g., PostgresStore).
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store   any // may implement Pinger
	Storage storage.ObjectStorage
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allOK := true

	if pinger, ok := h.Store.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			allOK = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.Storage != nil {
		if err := h.Storage.Ping(ctx); err != nil {
			checks["storage"] = "error: " + err.Error()
			allOK = false
		} else {
			checks["storage"] = "ok"
		}
	}

	resp := healthResponse{
		Status: "ok",
		Checks: checks,
	}
	status := http.StatusOK
	if !allOK {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
