package verifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/domain"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	pathVerifyBulk   = "/verify-bulk"
	pathVerifySingle = "/verify-single"
)

// Client sends contacts to the external verification service. Results come
// back asynchronously on the engages notification channel.
type Client struct {
	http     *resty.Client
	endpoint string
	limiter  *rate.Limiter
}

// NewClient builds a verifier client. Network errors, 429 and 5xx responses are
// retried up to cfg.RetryCount times with backoff.
func NewClient(cfg config.Verifier) *Client {
	rc := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Client{
		http:     rc,
		endpoint: cfg.Endpoint,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// VerifyBulk posts a whole batch as {emails|phones, hostname}.
func (c *Client) VerifyBulk(ctx context.Context, batch domain.VerificationBatch) error {
	return c.post(ctx, pathVerifyBulk, map[string]interface{}{
		batch.Channel.BulkField(): batch.Identifiers,
		"hostname":                batch.Hostname,
	})
}

// VerifySingle posts one contact as {email|phone, hostname}.
func (c *Client) VerifySingle(ctx context.Context, ch domain.Channel, identifier, hostname string) error {
	return c.post(ctx, pathVerifySingle, map[string]interface{}{
		string(ch): identifier,
		"hostname":  hostname,
	})
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	if c.endpoint == "" {
		return &domain.VerifierRequestError{Endpoint: path, Err: domain.ErrVerifierNotConfigured}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.VerifierRequestError{Endpoint: c.endpoint + path, Err: err}
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return &domain.VerifierRequestError{Endpoint: c.endpoint + path, Err: err}
	}
	if resp.IsError() {
		return &domain.VerifierRequestError{
			Endpoint:   c.endpoint + path,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(resp.String())),
		}
	}
	slog.Debug("verifier accepted request", "path", path, "status", resp.StatusCode(), "attempts", resp.Request.Attempt)
	return nil
}
