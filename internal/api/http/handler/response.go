package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dtroode/taskmanager-server/internal/logger"
	"github.com/dtroode/taskmanager-server/internal/model"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError is the only place service errors become HTTP statuses.
// Unauthorized and internal failures never echo their cause.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status, message := statusOf(err)

	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "HTTP handler: request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error())
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func statusOf(err error) (int, string) {
	var e *model.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "internal server error"
	}

	switch e.Kind {
	case model.KindValidation:
		return http.StatusBadRequest, e.Message
	case model.KindUnauthorized:
		return http.StatusUnauthorized, "please authenticate"
	case model.KindNotFound:
		return http.StatusNotFound, e.Message
	case model.KindConflict:
		return http.StatusConflict, e.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("request body is empty")
		}
		return model.NewValidationError("request body is not valid JSON")
	}
	return nil
}
