// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxRequests   int           // Maximum requests per window
	CleanupPeriod time.Duration // How often to clean up old entries

	// TrustProxy honours X-Forwarded-For and X-Real-IP. Only set it when a
	// reverse proxy in front of the server overwrites those headers.
	TrustProxy bool
}

// DefaultCompletionConfig limits calls that reach the paid language model API.
func DefaultCompletionConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxRequests:   30,
		CleanupPeriod: 5 * time.Minute,
	}
}

// windowRecord tracks requests for an IP/identifier
type windowRecord struct {
	Count     int
	FirstSeen time.Time
}

// Info contains information about rate limit status
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// MemoryRateLimiter implements fixed-window, in-memory rate limiting
type MemoryRateLimiter struct {
	config  *Config
	windows map[string]*windowRecord
	mu      sync.Mutex
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemoryRateLimiter creates a limiter and starts its cleanup goroutine.
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := newLimiter(config, time.Now)
	go limiter.cleanupLoop()
	return limiter
}

func newLimiter(config *Config, now func() time.Time) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		config:  config,
		windows: make(map[string]*windowRecord),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

// Allow counts a request for identifier and reports whether it may proceed.
func (rl *MemoryRateLimiter) Allow(identifier string) Info {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.windows[identifier]
	if !exists || now.Sub(record.FirstSeen) >= rl.config.WindowSize {
		record = &windowRecord{FirstSeen: now}
		rl.windows[identifier] = record
	}

	resetAt := record.FirstSeen.Add(rl.config.WindowSize)
	if record.Count >= rl.config.MaxRequests {
		return Info{
			Allowed:    false,
			Limit:      rl.config.MaxRequests,
			Remaining:  0,
			ResetTime:  resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}

	record.Count++
	return Info{
		Allowed:   true,
		Limit:     rl.config.MaxRequests,
		Remaining: rl.config.MaxRequests - record.Count,
		ResetTime: resetAt,
	}
}

// cleanupLoop periodically removes old records
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

// cleanup removes expired windows
func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.windows {
		if now.Sub(record.FirstSeen) >= rl.config.WindowSize {
			delete(rl.windows, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// ClientIP is the identifier Allow should count for r.
func (rl *MemoryRateLimiter) ClientIP(r *http.Request) string {
	return GetClientIP(r, rl.config.TrustProxy)
}

// GetClientIP returns the peer address of r. Forwarding headers are read
// only when trustProxy is set, since any client can send them.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			if ip := parseFirstIP(forwarded); ip != "" {
				return ip
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first entry of a comma-separated list
func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
