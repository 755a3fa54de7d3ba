package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/highway-to-peak/server/src/server/expedition"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// StatusFor maps a command outcome onto an HTTP status.
func StatusFor(o expedition.Outcome) int {
	switch o {
	case expedition.OutcomePeakRegistered, expedition.OutcomeClimberArrived:
		return http.StatusCreated
	case expedition.OutcomeClimberNotFound, expedition.OutcomePeakNotFound:
		return http.StatusNotFound
	case expedition.OutcomeAlreadyExists, expedition.OutcomeDuplicateClimber, expedition.OutcomeNotAtCamp:
		return http.StatusConflict
	case expedition.OutcomeInvalidDifficulty, expedition.OutcomeIneligible:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

// writeCommandError reports a failed command: contract violations are the
// caller's fault, anything else is ours.
func writeCommandError(w http.ResponseWriter, err error) {
	if expedition.IsContractError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to persist expedition state")
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
