package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string   `json:"error"`
	Fields  []string `json:"fields,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr maps err onto a status code and error body.
func writeErr(w http.ResponseWriter, err error) {
	var verr *chart.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: verr.Fields, Invalid: verr.Invalid})
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, chart.ErrNoTracks):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrStandMissing):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
