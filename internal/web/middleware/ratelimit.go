package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a fixed-window request budget per client address.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	rate    int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	remaining int
	start     time.Time
}

// NewRateLimiter allows rate requests per period per address and starts a
// sweeper that forgets idle clients. Call Stop to end the sweeper.
func NewRateLimiter(rate int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		rate:    rate,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the sweeper. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for addr, win := range rl.clients {
				if rl.now().Sub(win.start) > 2*rl.period {
					delete(rl.clients, addr)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow consumes one request from addr's budget.
func (rl *RateLimiter) Allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	win, ok := rl.clients[addr]
	if !ok || now.Sub(win.start) > rl.period {
		rl.clients[addr] = &window{remaining: rl.rate - 1, start: now}
		return true
	}
	if win.remaining <= 0 {
		return false
	}
	win.remaining--
	return true
}

// Middleware rejects requests over budget with 429. It keys on RemoteAddr,
// which TrustedRealIP has already resolved.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if ip := hostIP(addr); ip != nil {
			addr = ip.String()
		}
		if !rl.Allow(addr) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.period.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "Too many requests",
				"message": "Too many requests",
				"action":  "Slow down and try again shortly",
				"code":    "RATE001",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
