package http

import (
	"context"

	"github.com/contact-verifier/internal/application/validation"
	jwtinfra "github.com/contact-verifier/internal/infrastructure/jwt"
)

// NotificationDispatcher decodes and applies one raw engages notification.
type NotificationDispatcher interface {
	HandleRaw(ctx context.Context, raw []byte) error
}

// Deps holds the application services the router exposes.
type Deps struct {
	Validation    validation.Service
	Notifications NotificationDispatcher
	// TokenVerifier guards the ops routes; nil leaves them open.
	TokenVerifier *jwtinfra.Verifier
}
