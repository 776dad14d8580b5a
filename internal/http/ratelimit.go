package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// rateLimiter throttles mutating requests per client IP over a fixed window.
// Reads are never limited; the server applies it to non-GET methods only.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*writeWindow

	limit  int
	window time.Duration
	now    func() time.Time

	stopSweep chan struct{}
	stopOnce  sync.Once
}

// writeWindow counts one client's mutations since its window opened.
type writeWindow struct {
	opened time.Time
	seen   time.Time
	count  int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		clients:   make(map[string]*writeWindow),
		limit:     limit,
		window:    window,
		now:       time.Now,
		stopSweep: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// allow reports whether one more mutation from the IP fits its current
// window, opening a fresh window when the previous one has elapsed.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.clients[clientIP]
	if w == nil || now.Sub(w.opened) > rl.window {
		rl.clients[clientIP] = &writeWindow{opened: now, seen: now, count: 1}
		return true
	}

	w.count++
	w.seen = now
	if w.count > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// sweepLoop evicts clients that stopped mutating so the map stays bounded.
func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(rl.now().Add(-10 * rl.window))
		case <-rl.stopSweep:
			return
		}
	}
}

// evictIdle drops windows whose last mutation predates the cutoff.
func (rl *rateLimiter) evictIdle(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.clients {
		if w.seen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop terminates the sweep goroutine. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.stopSweep) })
}
