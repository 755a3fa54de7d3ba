package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/expedition"
	"github.com/highway-to-peak/server/src/server/service"
	"github.com/highway-to-peak/server/src/server/storage"
)

type ReportHandler struct {
	Service *service.Service
	Storage storage.ObjectStorage // nil disables export
	// URLExpiry bounds presigned download links for exported reports.
	URLExpiry time.Duration
}

func (h *ReportHandler) Camp(w http.ResponseWriter, r *http.Request) {
	writeReport(w, r, h.Service.CampReport())
}

func (h *ReportHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	writeReport(w, r, h.Service.OverallStatistics())
}

// ExportStatistics uploads the plain-text statistics and returns a link to it.
func (h *ReportHandler) ExportStatistics(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		writeError(w, http.StatusServiceUnavailable, "report export is not configured")
		return
	}

	res := h.Service.OverallStatistics()
	key := fmt.Sprintf("reports/statistics-%s.txt", uuid.New().String())
	if err := h.Storage.Upload(r.Context(), key, strings.NewReader(res.Message+"\n"), "text/plain; charset=utf-8"); err != nil {
		slog.Error("Failed to upload statistics report", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "failed to store report")
		return
	}

	expiry := h.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	url, err := h.Storage.PresignedURL(r.Context(), key, expiry)
	if err != nil {
		slog.Error("Failed to generate presigned URL", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "failed to generate download URL")
		return
	}

	slog.Info("Statistics report exported", "key", key)
	writeJSON(w, http.StatusCreated, data.ExportResponse{Key: key, URL: url})
}

func writeReport(w http.ResponseWriter, r *http.Request, res expedition.Result) {
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, res.Message)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
