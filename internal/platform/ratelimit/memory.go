package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory keeps one token bucket per key in process memory. A bucket holds
// the whole quota and refills it evenly over the window.
type Memory struct {
	quota     Quota
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewMemory creates an in-process limiter.
func NewMemory(quota Quota) *Memory {
	return &Memory{
		quota:    quota.withDefaults(),
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow implements Limiter. It never returns an error.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	v, ok := m.visitors[key]
	if !ok {
		every := m.quota.Window / time.Duration(m.quota.Requests)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), m.quota.Requests)}
		m.visitors[key] = v
	}

	v.lastSeen = now

	return v.limiter.AllowN(now, 1), nil
}

// sweep drops keys idle for longer than a window; their buckets are full
// again by then.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.quota.Window {
		return
	}

	for key, v := range m.visitors {
		if now.Sub(v.lastSeen) > m.quota.Window {
			delete(m.visitors, key)
		}
	}

	m.lastSweep = now
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.visitors)
}
