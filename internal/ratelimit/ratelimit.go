// Package ratelimit enforces a per-API-key requests-per-minute budget with
// an in-memory token bucket per key.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is one API key's token bucket, refilled continuously at ratePerSec.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	ratePerSec float64
	capacity   float64
	updatedAt  time.Time
}

func newBucket(rpm int) *bucket {
	rate := float64(rpm) / 60.0
	return &bucket{
		tokens:     float64(rpm),
		ratePerSec: rate,
		capacity:   float64(rpm),
		updatedAt:  time.Now(),
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.updatedAt).Seconds()
	b.updatedAt = now

	b.tokens += elapsed * b.ratePerSec
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Limiter holds one token bucket per API key, created lazily on first use
// with that key's configured requests-per-minute.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	defaultRPM int
}

func New(defaultRPM int) *Limiter {
	return &Limiter{
		buckets:    make(map[string]*bucket),
		defaultRPM: defaultRPM,
	}
}

// Allow reports whether the request for keyID should proceed, consuming a
// token if so. rpm overrides the limiter's default for keys that carry
// their own configured rate (APIKey.RateLimitRPM).
func (l *Limiter) Allow(keyID string, rpm int) bool {
	if rpm <= 0 {
		rpm = l.defaultRPM
	}

	l.mu.Lock()
	b, ok := l.buckets[keyID]
	if !ok {
		b = newBucket(rpm)
		l.buckets[keyID] = b
	}
	l.mu.Unlock()

	return b.allow()
}

// Forget drops a key's bucket, e.g. when its API key is deleted.
func (l *Limiter) Forget(keyID string) {
	l.mu.Lock()
	delete(l.buckets, keyID)
	l.mu.Unlock()
}
