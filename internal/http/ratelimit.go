package httpapi

import (
	"math"
	"sync"
	"time"
)

// Redirects and analytics reads stay unthrottled; only link creation burns
// tokens, since that is the endpoint that allocates identifiers and rows.
const maxTrackedClients = 10000

// createLimiter is a per-client-IP token bucket guarding POST /url.
type createLimiter struct {
	mu      sync.Mutex
	rps     float64
	burst   int
	clients map[string]*tokenBucket
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

func newCreateLimiter(rps float64, burst int) *createLimiter {
	return &createLimiter{rps: rps, burst: burst, clients: make(map[string]*tokenBucket)}
}

func (l *createLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.evictIdle(now)
		}
		b = &tokenBucket{tokens: float64(l.burst), lastSeen: now}
		l.clients[ip] = b
	}

	b.tokens = math.Min(float64(l.burst), b.tokens+now.Sub(b.lastSeen).Seconds()*l.rps)
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evictIdle drops buckets that have been quiet long enough to be fully
// refilled anyway, keeping the map bounded under IP churn.
func (l *createLimiter) evictIdle(now time.Time) {
	for ip, b := range l.clients {
		if now.Sub(b.lastSeen) > time.Minute {
			delete(l.clients, ip)
		}
	}
}
