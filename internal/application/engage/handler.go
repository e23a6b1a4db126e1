package engage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contact-verifier/internal/domain"
)

type reconciler interface {
	Reconcile(ctx context.Context, ch domain.Channel, results []domain.VerificationResult) (domain.ReconcileReport, error)
}

type doNotDisturbStore interface {
	SetDoNotDisturb(ctx context.Context, customerID string) error
}

// Handler applies engages notifications to customers.
type Handler struct {
	reconciler reconciler
	store      doNotDisturbStore
}

func NewHandler(r reconciler, store doNotDisturbStore) *Handler {
	return &Handler{reconciler: r, store: store}
}

// HandleRaw decodes and dispatches one raw notification.
func (h *Handler) HandleRaw(ctx context.Context, raw []byte) error {
	n, err := DecodeNotification(raw)
	if err != nil {
		return err
	}
	return h.Handle(ctx, n)
}

func (h *Handler) Handle(ctx context.Context, n domain.Notification) error {
	switch n := n.(type) {
	case domain.ContactVerifyNotification:
		_, err := h.reconciler.Reconcile(ctx, n.Channel, n.Results)
		return err
	case domain.SetDoNotDisturbNotification:
		if err := h.store.SetDoNotDisturb(ctx, n.CustomerID); err != nil {
			return fmt.Errorf("set do not disturb: %w", err)
		}
		slog.Info("do not disturb set", "customer_id", n.CustomerID)
		return nil
	default:
		return &domain.DecodeError{Action: n.Action(), Err: domain.ErrUnknownAction}
	}
}
