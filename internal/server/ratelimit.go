package server

import (
	"sync"
	"time"
)

const (
	limiterSweepEvery = time.Minute
	limiterIdleAfter  = 5 * time.Minute
)

// rateLimiter hands out a fixed number of tokens per client IP and refills
// them each interval. Idle clients are swept by a janitor goroutine that
// runs until Close.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int
	interval time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens   int
	refilled time.Time
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

func (rl *rateLimiter) janitor() {
	t := time.NewTicker(limiterSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-t.C:
			rl.sweep()
		}
	}
}

// sweep forgets clients not seen for limiterIdleAfter.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, b := range rl.visitors {
		if now.Sub(b.lastSeen) > limiterIdleAfter {
			delete(rl.visitors, ip)
		}
	}
}

// allow spends one token of ip, reporting false when none is left.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.visitors[ip]
	if !ok {
		b = &bucket{tokens: rl.rate, refilled: now}
		rl.visitors[ip] = b
	}
	b.lastSeen = now

	if n := int(now.Sub(b.refilled) / rl.interval); n > 0 {
		b.tokens = min(rl.rate, b.tokens+n*rl.rate)
		b.refilled = b.refilled.Add(time.Duration(n) * rl.interval)
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Close stops the janitor. It is safe to call more than once.
func (rl *rateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}
