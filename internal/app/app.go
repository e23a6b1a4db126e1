// Package app assembles the validation pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"iter"
	"log"

	"github.com/contact-verifier/internal/application/engage"
	"github.com/contact-verifier/internal/application/validation"
	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/domain"
	"github.com/contact-verifier/internal/infrastructure/dynamo"
	"github.com/contact-verifier/internal/infrastructure/memory"
	"github.com/contact-verifier/internal/infrastructure/sns"
	"github.com/contact-verifier/internal/infrastructure/verifier"
)

// CustomerStore is the persistence surface the pipeline needs.
type CustomerStore interface {
	StreamUnverified(ctx context.Context, ch domain.Channel, limit int) iter.Seq2[string, error]
	BulkSetValidationStatus(ctx context.Context, ch domain.Channel, results []domain.VerificationResult) (domain.ReconcileReport, error)
	SetDoNotDisturb(ctx context.Context, customerID string) error
}

// App holds the wired services shared by the commands.
type App struct {
	Store      CustomerStore
	Validation validation.Service
	Engage     *engage.Handler
}

// New builds the store, verifier client and report publisher selected by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Verifier.Endpoint == "" {
		log.Println("WARN: EMAIL_VERIFIER_ENDPOINT not set, verifier requests will be refused")
	}

	publisher, err := sns.NewPublisher(ctx, cfg)
	if err != nil {
		log.Printf("WARN: SNS publisher not available: %v", err)
		publisher = sns.Noop{}
	}

	svc := validation.NewService(validation.ServiceDeps{
		Store:         store,
		Verifier:      verifier.NewClient(cfg.Verifier),
		Publisher:     publisher,
		BatchLimit:    cfg.Validation.BatchLimit,
		FailurePolicy: cfg.Verifier.FailurePolicy,
	})
	return &App{
		Store:      store,
		Validation: svc,
		Engage:     engage.NewHandler(svc, store),
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (CustomerStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewCustomerStore(), nil
	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("dynamo client: %w", err)
		}
		// Creates the customers table and its indexes if they don't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewCustomerRepo(client, cfg.DynamoTables.Customers), nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
