package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/contact-verifier/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// RunEnvelope wraps bulk validation responses.
type RunEnvelope struct {
	Reports []*domain.RunReport `json:"reports"`
	Error   string              `json:"error,omitempty"`
}

// ReconcileEnvelope wraps verifier callback responses.
type ReconcileEnvelope struct {
	Report domain.ReconcileReport `json:"report"`
	Error  string                 `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		verr *domain.VerifierRequestError
		derr *domain.DecodeError
	)
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.As(err, &derr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrVerifierNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &verr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func httpError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
