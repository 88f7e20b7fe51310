package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	addons "github.com/eugener/wpaddons/internal"
)

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func errorResponse(err error) apiError {
	var e apiError
	e.Error.Message = err.Error()
	e.Error.Type = errorType(err)
	return e
}

func errorType(err error) string {
	switch {
	case errors.Is(err, addons.ErrUnauthorized):
		return "authentication_error"
	case errors.Is(err, addons.ErrNotFound):
		return "not_found_error"
	case errors.Is(err, addons.ErrBadRequest), errors.Is(err, addons.ErrUnknownView):
		return "invalid_request_error"
	default:
		return "server_error"
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, addons.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, addons.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, addons.ErrBadRequest), errors.Is(err, addons.ErrUnknownView):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Pre-allocated Content-Type values; direct map assignment skips the
// []string{v} alloc of Header.Set.
var (
	jsonCT = []string{"application/json"}
	htmlCT = []string{"text/html; charset=utf-8"}
	cssCT  = []string{"text/css; charset=utf-8"}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorResponse(err))
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header()["Content-Type"] = htmlCT
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
