package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound              = errors.New("not found")
	ErrBadRequest            = errors.New("bad request")
	ErrUnknownAction         = errors.New("unknown action")
	ErrVerifierNotConfigured = errors.New("verifier endpoint not configured")
)

// SelectorReadError reports a failure while streaming eligible customers.
type SelectorReadError struct {
	Channel Channel
	Err     error
}

func (e *SelectorReadError) Error() string {
	return fmt.Sprintf("select unverified %s contacts: %v", e.Channel, e.Err)
}

func (e *SelectorReadError) Unwrap() error { return e.Err }

// VerifierRequestError reports a failed call to the external verifier.
// StatusCode is zero when no HTTP response was received.
type VerifierRequestError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *VerifierRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("verifier request %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("verifier request %s: %v", e.Endpoint, e.Err)
}

func (e *VerifierRequestError) Unwrap() error { return e.Err }

// ReconciliationWriteError reports a failed bulk status write.
type ReconciliationWriteError struct {
	Channel Channel
	Err     error
}

func (e *ReconciliationWriteError) Error() string {
	return fmt.Sprintf("reconcile %s validation status: %v", e.Channel, e.Err)
}

func (e *ReconciliationWriteError) Unwrap() error { return e.Err }

// DecodeError reports an inbound notification that could not be decoded.
type DecodeError struct {
	Action string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("decode notification: %v", e.Err)
	}
	return fmt.Sprintf("decode notification %q: %v", e.Action, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
