package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lexmill99/studycoach/internal/core"
)

// Every response is a JSON envelope: {"status": "success", ...payload} or
// {"status": "error", "message": "..."}.

func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, payload map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": "error", "message": message})
}

// writeServiceError maps the core error taxonomy onto HTTP statuses. Any
// failure ends the request with an error envelope; no partial success leaks.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrUnreadablePDF):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrUpstreamRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
