package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/gsea"
	"github.com/starford/gsea-browser/internal/pipeline"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps pipeline errors to HTTP responses. op names the failing
// operation in the log line for unexpected errors.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrDiscovery):
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrDiscovery.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidPath), errors.Is(err, gsea.ErrUnknownColumn),
		errors.Is(err, pipeline.ErrInvalidEvent):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case apperr.IsLoadFailure(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
