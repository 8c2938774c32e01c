package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, rps float64, burst int) (*MemoryRateLimiter, *time.Time) {
	t.Helper()
	rl := NewMemoryRateLimiter(&Config{RPS: rps, Burst: burst, IdleTTL: time.Minute, CleanupPeriod: time.Hour})
	t.Cleanup(rl.Close)

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllow_BurstThenDeny(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 2)

	ok, info := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	ok, info = rl.Allow("1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 0, info.Remaining)

	ok, info = rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, time.Second)
}

func TestAllow_RefillsOverTime(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 1)

	ok, _ := rl.Allow("client")
	require.True(t, ok)
	ok, _ = rl.Allow("client")
	require.False(t, ok)

	*clock = clock.Add(time.Second)
	ok, _ = rl.Allow("client")
	assert.True(t, ok)
}

func TestAllow_ClientsAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)

	ok, _ := rl.Allow("a")
	require.True(t, ok)
	ok, _ = rl.Allow("a")
	require.False(t, ok)

	ok, _ = rl.Allow("b")
	assert.True(t, ok)
	assert.Equal(t, 2, rl.Len())
}

func TestCleanup_ForgetsIdleClients(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 1)

	rl.Allow("old")
	*clock = clock.Add(2 * time.Minute)
	rl.Allow("new")

	rl.cleanup()
	assert.Equal(t, 1, rl.Len())
}

func TestClose_Idempotent(t *testing.T) {
	rl := NewMemoryRateLimiter(nil)
	assert.NotPanics(t, func() {
		rl.Close()
		rl.Close()
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{name: "forwarded first entry", forwarded: "10.0.0.1, 10.0.0.2", remoteAddr: "192.168.1.1:1234", want: "10.0.0.1"},
		{name: "real ip header", realIP: "10.0.0.9", remoteAddr: "192.168.1.1:1234", want: "10.0.0.9"},
		{name: "remote addr", remoteAddr: "192.168.1.1:1234", want: "192.168.1.1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", want: "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}
