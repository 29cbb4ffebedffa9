package protocol

import (
	"sync"
)

const (
	// MaxConnectionsTotal bounds concurrent connections across all arenas.
	MaxConnectionsTotal = 2000
	// MaxConnectionsPerIP bounds concurrent connections from one address,
	// matching the teacher's WebSocketRateLimiter (internal/api/ratelimit.go).
	MaxConnectionsPerIP = 10
)

// connLimiter tracks per-IP and total connection counts so one address
// cannot exhaust the server's connection budget.
type connLimiter struct {
	mu       sync.Mutex
	total    int64
	perIP    map[string]int64
	maxTotal int64
	maxPerIP int64
}

func newConnLimiter(maxTotal, maxPerIP int64) *connLimiter {
	return &connLimiter{
		perIP:    make(map[string]int64),
		maxTotal: maxTotal,
		maxPerIP: maxPerIP,
	}
}

// allow reserves a connection slot for ip, or reports false if either the
// total or per-IP budget is exhausted.
func (l *connLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.total >= l.maxTotal || l.perIP[ip] >= l.maxPerIP {
		return false
	}
	l.total++
	l.perIP[ip]++
	return true
}

func (l *connLimiter) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.total)
}

func (l *connLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total--
	if l.perIP[ip] > 0 {
		l.perIP[ip]--
		if l.perIP[ip] == 0 {
			delete(l.perIP, ip)
		}
	}
}
