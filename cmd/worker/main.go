// Worker serves the ops HTTP routes and consumes engages notifications from Kafka.
// Set KAFKA_BROKERS to enable the consumer; without it only the HTTP routes run.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/contact-verifier/internal/app"
	"github.com/contact-verifier/internal/config"
	jwtinfra "github.com/contact-verifier/internal/infrastructure/jwt"
	transporthttp "github.com/contact-verifier/internal/transport/http"
	"github.com/contact-verifier/internal/transport/queue"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	// Ops token verifier (optional, routes stay open without it).
	var tokenVerifier *jwtinfra.Verifier
	if cfg.OpsJWTPublicKeyPath != "" {
		v, err := jwtinfra.NewVerifier(cfg.OpsJWTPublicKeyPath)
		if err != nil {
			log.Fatalf("ops token verifier: %v", err)
		}
		tokenVerifier = v
	} else {
		log.Println("WARN: OPS_JWT_PUBLIC_KEY_PATH not set, ops routes are unauthenticated")
	}

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		Validation:    a.Validation,
		Notifications: a.Engage,
		TokenVerifier: tokenVerifier,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.Verifier.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		consumer, err := queue.NewConsumer(cfg.Kafka, a.Engage)
		if err != nil {
			log.Fatalf("kafka consumer: %v", err)
		}
		defer consumer.Close()
		g.Go(func() error {
			log.Printf("Consuming %s (group %s)", cfg.Kafka.Topic, cfg.Kafka.GroupID)
			return consumer.Run(gctx)
		})
	} else {
		log.Println("WARN: KAFKA_BROKERS not set, engages notifications are only accepted over HTTP")
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("worker: %v", err)
	}
	log.Println("Worker stopped")
}
