// Package ratelimit provides per-client token-bucket rate limiting with
// separate budgets for read and write requests.
package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

// bucket is a token bucket refilling at a steady rate.
type bucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newBucket(capacity int, refillRate float64) *bucket {
	return &bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) allow() (allowed bool, remaining int, resetTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	b.tokens = min(float64(b.capacity), b.tokens+elapsed.Seconds()*b.refillRate)
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		allowed = true
	}

	remaining = int(b.tokens)
	if b.tokens < float64(b.capacity) {
		needed := float64(b.capacity) - b.tokens
		resetTime = now.Add(time.Duration(needed / b.refillRate * float64(time.Second)))
	} else {
		resetTime = now
	}
	return allowed, remaining, resetTime
}

// Info describes the rate-limit state after a decision.
type Info struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetTime time.Time
}

// Limiter manages buckets per (client, request class). Mutating requests get
// a smaller budget than reads.
type Limiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	config  Config
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a Limiter and starts its idle-bucket cleanup loop.
func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  cfg,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow decides whether the request may proceed for the given client.
func (l *Limiter) Allow(clientID string, r *http.Request) Info {
	if !l.config.Enabled {
		return Info{Allowed: true}
	}

	capacity := l.config.ReadCapacity
	refill := l.config.ReadRefillPerSec
	class := "read"
	if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodOptions {
		capacity = l.config.WriteCapacity
		refill = l.config.WriteRefillPerSec
		class = "write"
	}

	key := clientID + "|" + class

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(capacity, refill)
		l.buckets[key] = b
	}
	l.mu.Unlock()

	allowed, remaining, resetTime := b.allow()
	return Info{
		Allowed:   allowed,
		Limit:     capacity,
		Remaining: remaining,
		ResetTime: resetTime,
	}
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// cleanupLoop drops buckets that have refilled completely; they carry no
// state a fresh bucket would not have.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			for key, b := range l.buckets {
				b.mu.Lock()
				full := b.tokens >= float64(b.capacity)
				idle := time.Since(b.lastRefill) > l.config.CleanupInterval
				b.mu.Unlock()
				if full && idle {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
