package engage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/contact-verifier/internal/domain"
	"github.com/contact-verifier/internal/pkg/validate"
	"github.com/hashicorp/go-multierror"
)

type envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// contactResult is one verifier row. Identifiers are matched verbatim, so
// malformed ones (reported as badsyntax) must not be rejected here.
type contactResult struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status" validate:"required"`
}

type doNotDisturbData struct {
	CustomerID string `json:"customerId" validate:"required"`
}

// DecodeNotification parses a raw engages notification into a typed Notification.
// Unknown actions and malformed payloads yield a *domain.DecodeError.
func DecodeNotification(raw []byte) (domain.Notification, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	switch env.Action {
	case domain.ActionEmailVerify:
		return decodeContactVerify(env, domain.ChannelEmail)
	case domain.ActionPhoneVerify:
		return decodeContactVerify(env, domain.ChannelPhone)
	case domain.ActionSetDoNotDisturb:
		var d doNotDisturbData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, &domain.DecodeError{Action: env.Action, Err: err}
		}
		if err := validate.Struct(d); err != nil {
			return nil, &domain.DecodeError{Action: env.Action, Err: err}
		}
		return domain.SetDoNotDisturbNotification{CustomerID: d.CustomerID}, nil
	}
	return nil, &domain.DecodeError{Action: env.Action, Err: domain.ErrUnknownAction}
}

func decodeContactVerify(env envelope, ch domain.Channel) (domain.Notification, error) {
	var rows []contactResult
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return nil, &domain.DecodeError{Action: env.Action, Err: err}
		}
	}
	results, skipped := parseResults(ch, rows)
	if skipped != nil {
		slog.Warn("skipped invalid verification rows", "action", env.Action, "err", skipped)
	}
	return domain.ContactVerifyNotification{Channel: ch, Results: results}, nil
}

// DecodeResults parses a JSON list of {email|phone, status} rows for ch.
// Unlike notifications, any invalid row rejects the whole list.
func DecodeResults(ch domain.Channel, raw []byte) ([]domain.VerificationResult, error) {
	var rows []contactResult
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	results, skipped := parseResults(ch, rows)
	if skipped != nil {
		return nil, fmt.Errorf("%v: %w", skipped, domain.ErrBadRequest)
	}
	return results, nil
}

// parseResults keys each valid row by the channel's identifier. Invalid rows
// are left out and reported together in the returned error.
func parseResults(ch domain.Channel, rows []contactResult) ([]domain.VerificationResult, error) {
	results := make([]domain.VerificationResult, 0, len(rows))
	var merr *multierror.Error
	for i, row := range rows {
		if err := validate.Struct(row); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		ident := row.Email
		if ch == domain.ChannelPhone {
			ident = row.Phone
		}
		if ident == "" {
			merr = multierror.Append(merr, fmt.Errorf("row %d: missing %s", i, ch))
			continue
		}
		status := domain.ValidationStatus(row.Status)
		if !status.IsKnown() {
			slog.Info("unrecognised verifier status", "channel", ch, "status", row.Status)
		}
		results = append(results, domain.VerificationResult{Identifier: ident, Status: status})
	}
	return results, merr.ErrorOrNil()
}
