package domain

import "time"

// MaxBatchSize bounds the number of identifiers selected per pipeline invocation.
const MaxBatchSize = 1000

// ValidationStatus is the verification outcome of a contact channel.
type ValidationStatus string

const (
	StatusUnknown               ValidationStatus = "unknown"
	StatusValid                 ValidationStatus = "valid"
	StatusInvalid               ValidationStatus = "invalid"
	StatusAcceptAllUnverifiable ValidationStatus = "accept_all_unverifiable"
	StatusDisposable            ValidationStatus = "disposable"
	StatusCatchAll              ValidationStatus = "catchall"
	StatusBadSyntax             ValidationStatus = "badsyntax"
	StatusUnverifiable          ValidationStatus = "unverifiable"
	StatusNotChecked            ValidationStatus = "not_checked"
)

// IsKnown reports whether s is one of the enumerated statuses.
func (s ValidationStatus) IsKnown() bool {
	switch s {
	case StatusUnknown, StatusValid, StatusInvalid, StatusAcceptAllUnverifiable, StatusDisposable,
		StatusCatchAll, StatusBadSyntax, StatusUnverifiable, StatusNotChecked:
		return true
	}
	return false
}

// VerificationBatch is the set of identifiers sent to the verifier in one bulk request.
type VerificationBatch struct {
	Channel     Channel
	Hostname    string
	Identifiers []string
}

// Len returns the number of identifiers in the batch.
func (b *VerificationBatch) Len() int { return len(b.Identifiers) }

// VerificationResult is a single verifier outcome for one identifier.
type VerificationResult struct {
	Identifier string           `json:"identifier" validate:"required"`
	Status     ValidationStatus `json:"status" validate:"required"`
}

// ReconcileReport summarizes one reconciliation write.
type ReconcileReport struct {
	Channel   Channel `json:"channel"`
	Requested int     `json:"requested"`
	Applied   int     `json:"applied"`
	Unmatched int     `json:"unmatched"`
}

// RunReport summarizes one bulk validation run.
type RunReport struct {
	RunID         string    `json:"run_id"`
	Channel       Channel   `json:"channel"`
	Hostname      string    `json:"hostname"`
	Selected      int       `json:"selected"`
	VerifierSent  bool      `json:"verifier_sent"`
	VerifierError string    `json:"verifier_error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}
