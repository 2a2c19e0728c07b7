/*
middleware.go - Rate limiting and response caching

PURPOSE:
  Two read-path protections on top of chi's stock middleware: per-IP
  token-bucket rate limiting, and a short-TTL in-memory cache for GET
  responses so repeated audit/payroll reads don't recompute.
*/
package api

import (
	"bytes"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// =============================================================================
// PER-IP RATE LIMITING
// =============================================================================

// ipRateLimiter stores a token bucket per client IP.
type ipRateLimiter struct {
	mu  sync.RWMutex
	ips map[string]*rate.Limiter
	r   rate.Limit
	b   int
}

func newIPRateLimiter(r rate.Limit, b int) *ipRateLimiter {
	return &ipRateLimiter{ips: make(map[string]*rate.Limiter), r: r, b: b}
}

func (l *ipRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.ips[ip]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.ips[ip]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.r, l.b)
	l.ips[ip] = limiter
	return limiter
}

// RateLimit rejects clients exceeding r requests/second (burst b) with 429.
func RateLimit(r rate.Limit, b int) func(http.Handler) http.Handler {
	limiters := newIPRateLimiter(r, b)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ip, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				ip = req.RemoteAddr
			}
			if !limiters.limiter(ip).Allow() {
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded", nil)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// =============================================================================
// GET RESPONSE CACHE
// =============================================================================

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// CacheGET serves successful GET responses from an in-memory cache for
// the given TTL. Non-GET requests pass straight through.
func CacheGET(store *cache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodGet {
				next.ServeHTTP(w, req)
				return
			}

			key := req.URL.RequestURI()
			if hit, ok := store.Get(key); ok {
				cached := hit.(cachedResponse)
				for k, v := range cached.header {
					w.Header()[k] = v
				}
				w.WriteHeader(cached.status)
				w.Write(cached.body)
				return
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, req)

			if cw.status >= 200 && cw.status < 300 {
				store.Set(key, cachedResponse{
					status: cw.status,
					header: cw.Header().Clone(),
					body:   cw.body.Bytes(),
				}, ttl)
			}
		})
	}
}
