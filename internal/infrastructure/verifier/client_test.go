package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) config.Verifier {
	return config.Verifier{
		Endpoint:     endpoint,
		Timeout:      2 * time.Second,
		RetryCount:   2,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	}
}

func TestVerifyBulk_PostsIdentifiersUnderChannelField(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/verify-bulk", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	err := c.VerifyBulk(context.Background(), domain.VerificationBatch{
		Channel:     domain.ChannelPhone,
		Hostname:    "crm.example.com",
		Identifiers: []string{"+100", "+200"},
	})

	require.NoError(t, err)
	assert.Equal(t, []interface{}{"+100", "+200"}, got["phones"])
	assert.Equal(t, "crm.example.com", got["hostname"])
	_, hasEmails := got["emails"]
	assert.False(t, hasEmails)
}

func TestVerifySingle_PostsOneContact(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify-single", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	require.NoError(t, c.VerifySingle(context.Background(), domain.ChannelEmail, "a@x.com", "h"))
	assert.Equal(t, map[string]string{"email": "a@x.com", "hostname": "h"}, got)
}

func TestVerifyBulk_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	err := c.VerifyBulk(context.Background(), domain.VerificationBatch{Channel: domain.ChannelEmail, Identifiers: []string{"a@x.com"}})

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestVerifyBulk_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad hostname", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	err := c.VerifyBulk(context.Background(), domain.VerificationBatch{Channel: domain.ChannelEmail, Identifiers: []string{"a@x.com"}})

	var vre *domain.VerifierRequestError
	require.True(t, errors.As(err, &vre))
	assert.Equal(t, http.StatusBadRequest, vre.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestVerifyBulk_ExhaustedRetriesSurfaceStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	err := c.VerifyBulk(context.Background(), domain.VerificationBatch{Channel: domain.ChannelEmail, Identifiers: []string{"a@x.com"}})

	var vre *domain.VerifierRequestError
	require.True(t, errors.As(err, &vre))
	assert.Equal(t, http.StatusServiceUnavailable, vre.StatusCode)
}

func TestVerify_EmptyEndpointNeverSends(t *testing.T) {
	c := NewClient(testConfig(""))
	err := c.VerifySingle(context.Background(), domain.ChannelEmail, "a@x.com", "h")
	assert.True(t, errors.Is(err, domain.ErrVerifierNotConfigured))
}
