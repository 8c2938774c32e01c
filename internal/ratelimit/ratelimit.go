// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	RPS           float64       // Sustained requests per second per client
	Burst         int           // Bucket size
	IdleTTL       time.Duration // Clients idle this long are forgotten
	CleanupPeriod time.Duration // How often to sweep idle clients
}

// DefaultConfig returns sensible defaults for mutating API routes
func DefaultConfig() *Config {
	return &Config{
		RPS:           5,
		Burst:         20,
		IdleTTL:       10 * time.Minute,
		CleanupPeriod: time.Minute,
	}
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type clientRecord struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryRateLimiter keeps one token bucket per client identifier.
type MemoryRateLimiter struct {
	config    *Config
	clients   map[string]*clientRecord
	mu        sync.Mutex
	stopCh    chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter and starts its janitor.
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CleanupPeriod <= 0 {
		config.CleanupPeriod = time.Minute
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}

	limiter := &MemoryRateLimiter{
		config:  config,
		clients: make(map[string]*clientRecord),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go limiter.cleanupLoop()

	return limiter
}

// Allow consumes one token for identifier when available.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.clients[identifier]
	if !exists {
		record = &clientRecord{limiter: rate.NewLimiter(rate.Limit(rl.config.RPS), rl.config.Burst)}
		rl.clients[identifier] = record
	}
	record.lastSeen = now

	info := &RateLimitInfo{Limit: rl.config.Burst}

	reservation := record.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		info.RetryAfter = rl.config.IdleTTL
		return false, info
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		info.RetryAfter = delay
		return false, info
	}

	info.Allowed = true
	if remaining := int(record.limiter.TokensAt(now)); remaining > 0 {
		info.Remaining = remaining
	}
	return true, info
}

// Len reports how many clients are currently tracked.
func (rl *MemoryRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes clients idle for longer than IdleTTL
func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.clients {
		if now.Sub(record.lastSeen) > rl.config.IdleTTL {
			delete(rl.clients, identifier)
		}
	}
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (rl *MemoryRateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	// Check for forwarded IP (behind proxy/load balancer)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first entry from a comma-separated list
func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
