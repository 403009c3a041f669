package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskcanvas/logging"
	"taskcanvas/middleware"
	"taskcanvas/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError hides internal error text behind "Server error".
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %s %s: %v", r.Method, r.URL.Path, err)
		middleware.WriteError(w, status, "Server error")
		return
	}
	msg := err.Error()
	var modelErr *models.Error
	if errors.As(err, &modelErr) {
		msg = modelErr.Msg
	}
	middleware.WriteError(w, status, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return models.NewError(models.ErrValidation, "invalid request payload")
	}
	return nil
}
