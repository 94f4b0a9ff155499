package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/photowall/photowall"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the JSON body for acknowledged mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message string) {
	if err := WriteJSON(w, code, ErrorResponse{Error: message}); err != nil {
		slog.Error("failed to encode error response", "err", err)
	}
}

// HandleError maps a domain error to its HTTP status and error body.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "err", err)

	if errors.Is(err, photowall.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errors.Is(err, photowall.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}

	WriteError(w, http.StatusInternalServerError, "internal server error")
}
