package worker

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// Limiter keeps one token bucket per key. Keys are provider names or URLs;
// a URL key is reduced to its host so every page of a site shares a bucket.
type Limiter struct {
	buckets sync.Map // normalized key -> *rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewLimiter allows requestsPerSecond per key. requestsPerSecond <= 0 means
// unlimited; burst <= 0 means 5.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = defaultBurst
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Limiter{limit: limit, burst: burst}
}

// Wait blocks until key may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}

// Allow consumes a token for key if one is available.
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

// SetRate changes the rate for one key in place. Tokens already spent stay spent.
func (l *Limiter) SetRate(key string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	b := l.bucket(key)
	b.SetLimit(rate.Limit(requestsPerSecond))
	b.SetBurst(burst)
}

// SetInterval allows one call per every for key, keeping any slower rate
// already in place.
func (l *Limiter) SetInterval(key string, every time.Duration) {
	if every <= 0 {
		return
	}
	b := l.bucket(key)
	if limit := rate.Every(every); limit < b.Limit() {
		b.SetLimit(limit)
		b.SetBurst(1)
	}
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	key = normalizeKey(key)
	if b, ok := l.buckets.Load(key); ok {
		return b.(*rate.Limiter)
	}
	b, _ := l.buckets.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	return b.(*rate.Limiter)
}

// normalizeKey maps "https://api.openai.com/v1" to "api.openai.com" and
// lowercases plain names.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if strings.Contains(key, "://") {
		if u, err := url.Parse(key); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return key
}
