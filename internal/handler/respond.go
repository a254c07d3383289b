package handler

import (
	"encoding/json"
	"net/http"

	appErr "github.com/souldream/backend/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps the error's kind to an HTTP status. Internal errors are
// masked; the detail stays in the logs.
func respondError(w http.ResponseWriter, err error) {
	status := appErr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	respondJSON(w, status, map[string]string{"error": msg})
}
