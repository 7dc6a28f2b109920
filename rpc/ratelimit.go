package rpc

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands out one token bucket per client address. Idle buckets are
// swept on access.
type rateLimiter struct {
	perSecond rate.Limit
	burst     int

	mu        sync.Mutex
	visitors  map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

// newRateLimiter returns nil when limiting is disabled.
func newRateLimiter(requestsPerMinute, burst int) *rateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		perSecond: rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burst,
		visitors:  make(map[string]*limiterEntry),
		now:       time.Now,
	}
}

func (l *rateLimiter) allow(source string) bool {
	if l == nil {
		return true
	}
	if source == "" {
		source = "unknown"
	}
	now := l.now()
	l.mu.Lock()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for id, entry := range l.visitors {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.visitors, id)
			}
		}
		l.lastSweep = now
	}
	entry, ok := l.visitors[source]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.perSecond, l.burst)}
		l.visitors[source] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()
	return entry.limiter.AllowN(now, 1)
}

const maxForwardedForAddrs = 16

// trustedProxies is the set of peer addresses whose X-Forwarded-For header is
// believed.
type trustedProxies map[string]struct{}

func newTrustedProxies(entries []string) trustedProxies {
	set := make(trustedProxies, len(entries))
	for _, entry := range entries {
		if ip := canonicalIP(entry); ip != "" {
			set[ip] = struct{}{}
		}
	}
	return set
}

// clientSource keys the limiter. The forwarded address is used only when the
// direct peer is a trusted proxy.
func (p trustedProxies) clientSource(r *http.Request) string {
	remote := remoteHost(r.RemoteAddr)
	if _, ok := p[canonicalIP(remote)]; !ok {
		return remote
	}
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return remote
	}
	parts := strings.Split(forwarded, ",")
	if len(parts) > maxForwardedForAddrs {
		return remote
	}
	if candidate := canonicalIP(parts[0]); candidate != "" {
		return candidate
	}
	return remote
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func canonicalIP(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(trimmed); err == nil {
		trimmed = host
	}
	ip := net.ParseIP(strings.Trim(trimmed, "[]"))
	if ip == nil {
		return ""
	}
	return ip.String()
}
