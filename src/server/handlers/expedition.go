package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/middleware"
	"github.com/highway-to-peak/server/src/server/service"
)

type ExpeditionHandler struct {
	Service *service.Service
}

func (h *ExpeditionHandler) ListPeaks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Peaks())
}

func (h *ExpeditionHandler) RegisterPeak(w http.ResponseWriter, r *http.Request) {
	var req data.PeakRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := h.Service.RegisterPeak(r.Context(), req.Name, req.Elevation, req.Difficulty)
	if err != nil {
		slog.Warn("RegisterPeak failed", "error", err, "peak", req.Name)
		writeCommandError(w, err)
		return
	}
	writeJSON(w, StatusFor(res.Outcome), res)
}

func (h *ExpeditionHandler) RegisterClimber(w http.ResponseWriter, r *http.Request) {
	var req data.ClimberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := h.Service.RegisterClimber(r.Context(), req.Name, req.UsesOxygen)
	if err != nil {
		slog.Warn("RegisterClimber failed", "error", err, "climber", req.Name)
		writeCommandError(w, err)
		return
	}
	writeJSON(w, StatusFor(res.Outcome), res)
}

func (h *ExpeditionHandler) GetClimber(w http.ResponseWriter, r *http.Request) {
	res := h.Service.Climber(chi.URLParam(r, "name"))
	writeJSON(w, StatusFor(res.Outcome), res)
}

func (h *ExpeditionHandler) AttemptPeak(w http.ResponseWriter, r *http.Request) {
	var req data.AttemptRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := h.Service.AttemptPeak(r.Context(), req.Climber, req.Peak)
	if err != nil {
		slog.Error("AttemptPeak failed", "error", err, "climber", req.Climber, "peak", req.Peak)
		writeCommandError(w, err)
		return
	}
	slog.Info("Peak attempted",
		"climber", req.Climber, "peak", req.Peak, "outcome", res.Outcome, "operator", operatorName(r))
	writeJSON(w, StatusFor(res.Outcome), res)
}

func (h *ExpeditionHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.Service.Attempts(r.Context(), r.URL.Query().Get("climber"))
	if err != nil {
		slog.Error("ListAttempts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if attempts == nil {
		attempts = []data.AttemptRecord{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *ExpeditionHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req data.RecoveryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Days < 1 {
		writeError(w, http.StatusBadRequest, "days must be at least 1")
		return
	}

	res, err := h.Service.Recover(r.Context(), req.Climber, req.Days)
	if err != nil {
		slog.Error("Recover failed", "error", err, "climber", req.Climber)
		writeCommandError(w, err)
		return
	}
	writeJSON(w, StatusFor(res.Outcome), res)
}

func operatorName(r *http.Request) string {
	op, ok := middleware.OperatorFromContext(r.Context())
	switch {
	case !ok:
		return "anonymous"
	case op.Nickname != "":
		return op.Nickname
	case op.Subject != "":
		return op.Subject
	default:
		return "anonymous"
	}
}
