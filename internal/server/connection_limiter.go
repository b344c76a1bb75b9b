package server

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Sweep cadence for per-IP rate-limiter state. An IP that has not opened a
// WebSocket in staleLimiterAge is forgotten entirely.
const (
	limiterSweepInterval = 5 * time.Minute
	staleLimiterAge      = 10 * time.Minute
)

// GlobalConnectionLimiter caps the total number of concurrent WebSocket
// connections one instance will hold. Lock-free; the CAS loop keeps the
// count from ever exceeding max under concurrent upgrades.
type GlobalConnectionLimiter struct {
	current atomic.Int64
	max     int64
}

func NewGlobalConnectionLimiter(max int64) *GlobalConnectionLimiter {
	return &GlobalConnectionLimiter{max: max}
}

// Acquire claims one connection slot, reporting false at capacity.
func (l *GlobalConnectionLimiter) Acquire() bool {
	for {
		n := l.current.Load()
		if n >= l.max {
			return false
		}
		if l.current.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release returns a previously acquired slot.
func (l *GlobalConnectionLimiter) Release() {
	l.current.Add(-1)
}

// Current reports the number of held slots.
func (l *GlobalConnectionLimiter) Current() int64 {
	return l.current.Load()
}

// Max reports the configured capacity.
func (l *GlobalConnectionLimiter) Max() int64 {
	return l.max
}

// CapacityPct reports utilization as a percentage, for the stats endpoint.
func (l *GlobalConnectionLimiter) CapacityPct() float64 {
	if l.max == 0 {
		return 0
	}
	return float64(l.Current()) / float64(l.max) * 100
}

// IPConnectionLimiter caps concurrent connections per client IP, so a
// single misbehaving viewer cannot occupy the room capacity meant for
// everyone else.
type IPConnectionLimiter struct {
	mu       sync.RWMutex
	held     map[string]int
	perIPMax int
}

func NewIPConnectionLimiter(perIPMax int) *IPConnectionLimiter {
	return &IPConnectionLimiter{
		held:     make(map[string]int),
		perIPMax: perIPMax,
	}
}

// Acquire claims a slot for ip, reporting false when the IP is at its cap.
func (l *IPConnectionLimiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[ip] >= l.perIPMax {
		return false
	}
	l.held[ip]++
	return true
}

// Release returns a slot for ip. The map entry is dropped at zero so idle
// IPs cost nothing.
func (l *IPConnectionLimiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.held[ip]
	switch {
	case n > 1:
		l.held[ip] = n - 1
	case n == 1:
		delete(l.held, ip)
	}
}

// Count reports the slots held by ip.
func (l *IPConnectionLimiter) Count(ip string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.held[ip]
}

// UniqueIPs reports how many distinct IPs currently hold connections.
func (l *IPConnectionLimiter) UniqueIPs() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.held)
}

// MaxPer reports the configured per-IP cap.
func (l *IPConnectionLimiter) MaxPer() int {
	return l.perIPMax
}

// ConnectionRateLimiter throttles how fast one IP may open new connections,
// with a token bucket per IP. Reconnect storms after a deploy drain the
// bucket instead of hammering the upgrade path.
type ConnectionRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*ipBucket
	rate      rate.Limit
	burst     int
	nextSweep time.Time
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewConnectionRateLimiter(connectionsPerSecond float64, burst int) *ConnectionRateLimiter {
	return &ConnectionRateLimiter{
		buckets:   make(map[string]*ipBucket),
		rate:      rate.Limit(connectionsPerSecond),
		burst:     burst,
		nextSweep: time.Now().Add(limiterSweepInterval),
	}
}

// Allow reports whether ip may open a connection right now.
func (l *ConnectionRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.After(l.nextSweep) {
		l.sweep(now)
		l.nextSweep = now.Add(limiterSweepInterval)
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now

	return b.limiter.Allow()
}

// sweep drops buckets for IPs not seen within staleLimiterAge. Caller holds mu.
func (l *ConnectionRateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-staleLimiterAge)
	for ip, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, ip)
		}
	}
}

// ActiveLimiters reports the number of tracked IP buckets.
func (l *ConnectionRateLimiter) ActiveLimiters() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Rate reports the sustained connections-per-second limit.
func (l *ConnectionRateLimiter) Rate() float64 {
	return float64(l.rate)
}

// Burst reports the burst size.
func (l *ConnectionRateLimiter) Burst() int {
	return l.burst
}

// LimitReason labels a rejected upgrade for metrics and logs.
type LimitReason string

const (
	LimitReasonGlobal LimitReason = "global_limit"
	LimitReasonPerIP  LimitReason = "per_ip_limit"
	LimitReasonRate   LimitReason = "rate_limit"
)

// ConnectionLimits layers all three limits in front of the upgrade
// endpoint: rate first (cheapest), then the global cap, then per-IP.
type ConnectionLimits struct {
	global *GlobalConnectionLimiter
	perIP  *IPConnectionLimiter
	rate   *ConnectionRateLimiter
}

func NewConnectionLimits(globalMax int64, perIPMax int, connectionsPerSecond float64, burst int) *ConnectionLimits {
	return &ConnectionLimits{
		global: NewGlobalConnectionLimiter(globalMax),
		perIP:  NewIPConnectionLimiter(perIPMax),
		rate:   NewConnectionRateLimiter(connectionsPerSecond, burst),
	}
}

// Acquire claims every layer for ip, or reports which one refused. A
// partial acquisition is rolled back so the layers never drift apart.
func (l *ConnectionLimits) Acquire(ip string) (bool, LimitReason) {
	if !l.rate.Allow(ip) {
		return false, LimitReasonRate
	}
	if !l.global.Acquire() {
		return false, LimitReasonGlobal
	}
	if !l.perIP.Acquire(ip) {
		l.global.Release()
		return false, LimitReasonPerIP
	}
	return true, ""
}

// Release returns every layer's slot for ip.
func (l *ConnectionLimits) Release(ip string) {
	l.perIP.Release(ip)
	l.global.Release()
}

// Global exposes the total-connection limiter for the stats endpoint.
func (l *ConnectionLimits) Global() *GlobalConnectionLimiter {
	return l.global
}

// PerIP exposes the per-IP limiter for the stats endpoint.
func (l *ConnectionLimits) PerIP() *IPConnectionLimiter {
	return l.perIP
}

// Rate exposes the rate limiter.
func (l *ConnectionLimits) Rate() *ConnectionRateLimiter {
	return l.rate
}
