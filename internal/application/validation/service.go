package validation

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/domain"
	"github.com/contact-verifier/internal/pkg/id"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

type Service interface {
	// ValidateBulk selects unverified contacts on ch and sends them to the verifier in one request.
	ValidateBulk(ctx context.Context, ch domain.Channel, hostname string) (*domain.RunReport, error)
	// ValidateAll runs ValidateBulk for every channel concurrently.
	ValidateAll(ctx context.Context, hostname string) ([]*domain.RunReport, error)
	ValidateSingle(ctx context.Context, ch domain.Channel, identifier, hostname string) error
	// Reconcile writes verifier results back onto the matching customers.
	Reconcile(ctx context.Context, ch domain.Channel, results []domain.VerificationResult) (domain.ReconcileReport, error)
}

type customerStore interface {
	StreamUnverified(ctx context.Context, ch domain.Channel, limit int) iter.Seq2[string, error]
	BulkSetValidationStatus(ctx context.Context, ch domain.Channel, results []domain.VerificationResult) (domain.ReconcileReport, error)
}

type verifierClient interface {
	VerifyBulk(ctx context.Context, batch domain.VerificationBatch) error
	VerifySingle(ctx context.Context, ch domain.Channel, identifier, hostname string) error
}

type reportPublisher interface {
	PublishRunReport(ctx context.Context, report domain.RunReport) error
}

type service struct {
	store         customerStore
	verifier      verifierClient
	publisher     reportPublisher
	batchLimit    int
	failurePolicy string
}

type ServiceDeps struct {
	Store         customerStore
	Verifier      verifierClient
	Publisher     reportPublisher // optional
	BatchLimit    int
	FailurePolicy string // config.PolicyFailFast or config.PolicyLogAndContinue
}

func NewService(deps ServiceDeps) Service {
	limit := deps.BatchLimit
	if limit <= 0 || limit > domain.MaxBatchSize {
		limit = domain.MaxBatchSize
	}
	return &service{
		store:         deps.Store,
		verifier:      deps.Verifier,
		publisher:     deps.Publisher,
		batchLimit:    limit,
		failurePolicy: deps.FailurePolicy,
	}
}

// Accumulate drains seq into a batch. The first read error aborts the batch.
func Accumulate(seq iter.Seq2[string, error], ch domain.Channel, hostname string) (domain.VerificationBatch, error) {
	batch := domain.VerificationBatch{Channel: ch, Hostname: hostname}
	for ident, err := range seq {
		if err != nil {
			return domain.VerificationBatch{}, &domain.SelectorReadError{Channel: ch, Err: err}
		}
		batch.Identifiers = append(batch.Identifiers, ident)
	}
	return batch, nil
}

func (s *service) ValidateBulk(ctx context.Context, ch domain.Channel, hostname string) (*domain.RunReport, error) {
	report := &domain.RunReport{
		RunID:     id.New(),
		Channel:   ch,
		Hostname:  hostname,
		StartedAt: time.Now().UTC(),
	}
	log := slog.With("run_id", report.RunID, "channel", ch)

	batch, err := Accumulate(s.store.StreamUnverified(ctx, ch, s.batchLimit), ch, hostname)
	if err != nil {
		log.Error("selecting unverified contacts failed", "err", err)
		return nil, err
	}
	report.Selected = batch.Len()

	if batch.Len() == 0 {
		log.Info("no unverified contacts")
	} else if verr := s.verifier.VerifyBulk(ctx, batch); verr != nil {
		report.VerifierError = verr.Error()
		log.Error("bulk verifier request failed", "selected", batch.Len(), "policy", s.failurePolicy, "err", verr)
		if s.failurePolicy != config.PolicyLogAndContinue {
			s.finish(ctx, report)
			return report, verr
		}
	} else {
		report.VerifierSent = true
		log.Info("sent contacts to verifier", "selected", batch.Len())
	}

	s.finish(ctx, report)
	return report, nil
}

// finish stamps the report and publishes it. Publish failures never fail a run.
func (s *service) finish(ctx context.Context, report *domain.RunReport) {
	report.FinishedAt = time.Now().UTC()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRunReport(ctx, *report); err != nil {
		slog.Warn("publishing run report failed", "run_id", report.RunID, "err", err)
	}
}

// ValidateAll runs the channels independently on ctx; one channel failing never
// cancels another. Every channel's error is returned.
func (s *service) ValidateAll(ctx context.Context, hostname string) ([]*domain.RunReport, error) {
	reports := make([]*domain.RunReport, len(domain.Channels))
	errs := make([]error, len(domain.Channels))
	var g errgroup.Group
	for i, ch := range domain.Channels {
		g.Go(func() error {
			reports[i], errs[i] = s.ValidateBulk(ctx, ch, hostname)
			return nil
		})
	}
	_ = g.Wait()

	var merr *multierror.Error
	for i, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", domain.Channels[i], err))
		}
	}
	return reports, merr.ErrorOrNil()
}

func (s *service) ValidateSingle(ctx context.Context, ch domain.Channel, identifier, hostname string) error {
	if identifier == "" {
		return fmt.Errorf("%s is required: %w", ch, domain.ErrBadRequest)
	}
	if err := s.verifier.VerifySingle(ctx, ch, identifier, hostname); err != nil {
		slog.Error("single verifier request failed", "channel", ch, "err", err)
		return err
	}
	return nil
}

func (s *service) Reconcile(ctx context.Context, ch domain.Channel, results []domain.VerificationResult) (domain.ReconcileReport, error) {
	if len(results) == 0 {
		return domain.ReconcileReport{Channel: ch}, nil
	}
	report, err := s.store.BulkSetValidationStatus(ctx, ch, results)
	if err != nil {
		werr := &domain.ReconciliationWriteError{Channel: ch, Err: err}
		slog.Error("reconciliation failed", "channel", ch, "requested", len(results), "applied", report.Applied, "err", err)
		return report, werr
	}
	slog.Info("reconciled validation statuses",
		"channel", ch, "requested", report.Requested, "applied", report.Applied, "unmatched", report.Unmatched)
	return report, nil
}
