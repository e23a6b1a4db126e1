package http

import (
	"context"
	"net/http"

	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/transport/http/handler"
	appmiddleware "github.com/contact-verifier/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the ops router. Background work started for
// the router stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	var authMw func(http.Handler) http.Handler
	if deps.TokenVerifier != nil {
		authMw = appmiddleware.Auth(deps.TokenVerifier)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 per caller on the inbound result routes.
	callbackRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, appmiddleware.TrustedProxies(cfg.TrustedProxies)...)

	healthH := handler.NewHealthHandler()
	validationH := handler.NewValidationHandler(deps.Validation, cfg.Validation.Hostname)
	notifH := handler.NewNotificationHandler(deps.Notifications)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/validations/single", validationH.Single)
			r.Post("/validations/{channel}", validationH.Trigger)
			r.With(callbackRL.Limit).Post("/validations/{channel}/results", validationH.Results)
			r.With(callbackRL.Limit).Post("/notifications", notifH.Receive)
		})
	})

	return r
}
