// Package ratelimit throttles outbound requests per host so the scraper stays
// polite toward the wiki.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter gates outbound requests. Wait blocks until a request for the given
// URL may proceed; Allow reports whether one could proceed immediately.
type Limiter interface {
	Wait(ctx context.Context, urlStr string) error
	Allow(urlStr string) bool
}

// HostLimiter applies a token-bucket limit per host. The wiki API and its
// image path share a budget per hostname rather than one global bucket.
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a HostLimiter with the given per-host rate.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}
	if burst <= 0 {
		burst = 10
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request for urlStr can proceed. URLs that fail to
// parse are let through; they will fail at the transport instead.
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	host := extractHost(urlStr)
	if host == "" {
		return nil
	}
	return hl.getLimiter(host).Wait(ctx)
}

// Allow reports whether a request for urlStr can proceed without blocking.
func (hl *HostLimiter) Allow(urlStr string) bool {
	host := extractHost(urlStr)
	if host == "" {
		return true
	}
	return hl.getLimiter(host).Allow()
}

func (hl *HostLimiter) getLimiter(host string) *rate.Limiter {
	hl.mu.RLock()
	limiter, ok := hl.limiters[host]
	hl.mu.RUnlock()
	if ok {
		return limiter
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	if limiter, ok := hl.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = limiter
	return limiter
}

func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
