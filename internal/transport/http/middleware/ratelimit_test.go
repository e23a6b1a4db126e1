package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newLimiter(t *testing.T, trusted ...string) *RateLimiter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRateLimiter(ctx, rate.Limit(0.001), 1, TrustedProxies(trusted)...)
}

func TestClientIP_IgnoresForwardingHeadersFromUntrustedPeer(t *testing.T) {
	rl := newLimiter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:40000"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	req.Header.Set("X-Real-Ip", "5.6.7.8")
	assert.Equal(t, "203.0.113.9", rl.clientIP(req))
}

func TestClientIP_TrustedProxyUsesNearestUntrustedHop(t *testing.T) {
	rl := newLimiter(t, "10.0.0.0/8")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:443"
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 1.2.3.4, 10.0.0.7")
	assert.Equal(t, "1.2.3.4", rl.clientIP(req))
}

func TestClientIP_TrustedProxyFallsBackToXRealIP(t *testing.T) {
	rl := newLimiter(t, "192.168.1.1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:54321"
	req.Header.Set("X-Real-Ip", "9.10.11.12")
	assert.Equal(t, "9.10.11.12", rl.clientIP(req))
}

func TestClientIP_RemoteAddrWithoutPort(t *testing.T) {
	rl := newLimiter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1"
	assert.Equal(t, "192.168.1.1", rl.clientIP(req))
}

func TestTrustedProxies_SkipsInvalidEntries(t *testing.T) {
	got := TrustedProxies([]string{"10.0.0.0/8", "not-an-ip", "192.168.1.1"})
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.1/32"),
	}, got)
}

func TestLimit_RejectsOverBurst(t *testing.T) {
	h := newLimiter(t).Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, second.Body.String())
}

func TestLimit_RotatingForwardedForDoesNotBypassLimit(t *testing.T) {
	h := newLimiter(t).Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	first := httptest.NewRequest(http.MethodPost, "/", nil)
	first.Header.Set("X-Forwarded-For", "1.1.1.1")
	second := httptest.NewRequest(http.MethodPost, "/", nil)
	second.Header.Set("X-Forwarded-For", "2.2.2.2")

	rr1, rr2 := httptest.NewRecorder(), httptest.NewRecorder()
	h.ServeHTTP(rr1, first)
	h.ServeHTTP(rr2, second)

	assert.Equal(t, http.StatusOK, rr1.Code)
	assert.Equal(t, http.StatusTooManyRequests, rr2.Code)
}
