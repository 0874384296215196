package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 10 * time.Minute
	staleAfter      = 30 * time.Minute
)

const tooManyRequests = `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`

// KeyFunc picks the bucket a request is counted against. An empty key
// bypasses limiting.
type KeyFunc func(r *http.Request) string

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimitByIP applies per-client rate limiting keyed on the remote address.
// Mount it after chi's RealIP so proxied requests are attributed correctly.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	return RateLimit(ctx, requestsPerSecond, burst, ClientIP)
}

// RateLimit applies token-bucket rate limiting per key. Stale limiter entries
// are cleaned up every 10 minutes until ctx is done.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int, key KeyFunc) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*keyedLimiter)
	)

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				cutoff := time.Now().Add(-staleAfter)
				for k, kl := range limiters {
					if kl.lastAccess.Before(cutoff) {
						delete(limiters, k)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	limiterFor := func(k string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		kl, ok := limiters[k]
		if !ok {
			kl = &keyedLimiter{
				limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
				lastAccess: time.Now(),
			}
			limiters[k] = kl
		} else {
			kl.lastAccess = time.Now()
		}
		return kl.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiterFor(k).Allow() {
				w.Header().Set("Content-Type", "application/problem+json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(tooManyRequests))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr, or the whole value when it
// carries no port (chi's RealIP rewrites it that way).
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
