package middleware

import (
	"net/http"
	"sync"
	"time"

	"deskly/pkg/logger"
)

// CustomerExtractor resolves the rate-limit key for a request. The default
// reads the opaque customer id the auth layer forwards in X-Customer-ID.
type CustomerExtractor func(r *http.Request) string

func DefaultCustomerExtractor(r *http.Request) string {
	return r.Header.Get("X-Customer-ID")
}

// CustomerRateLimiter applies a sliding-window request limit per customer.
// Requests without a customer id are not limited; unauthenticated browsing
// endpoints stay unaffected.
type CustomerRateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor CustomerExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewCustomerRateLimiter(limit int, window time.Duration, extractor CustomerExtractor, log *logger.Logger) *CustomerRateLimiter {
	if extractor == nil {
		extractor = DefaultCustomerExtractor
	}

	limiter := &CustomerRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *CustomerRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for customer, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, customer)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CustomerRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *CustomerRateLimiter) Allow(customerID string) bool {
	if customerID == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[customerID][:0]
	for _, ts := range rl.requests[customerID] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[customerID] = valid
		return false
	}

	rl.requests[customerID] = append(valid, now)
	return true
}

func CustomerRateLimit(limiter *CustomerRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID := limiter.extractor(r)

			if !limiter.Allow(customerID) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", requestIDFrom(r.Context()),
					"customer_id", customerID,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
