// Package gateway implements the API gateway: round-robin load
// balancing over healthy service instances, active health checking,
// Redis-backed rate limiting, a circuit breaker per upstream, and
// reverse-proxying with local JWT validation.
package gateway

import (
	"sync"
	"sync/atomic"
)

// Upstream is one instance of a backend service the gateway can route
// requests to.
type Upstream struct {
	Name    string // logical service name, e.g. "booking"
	BaseURL string
}

// Balancer round-robins over the healthy instances of one logical
// service, falling back to routing through unhealthy instances rather
// than failing the request outright if every instance is marked down
// (fail-open, since a wrong guess is better than refusing all traffic).
type Balancer struct {
	mu        sync.RWMutex
	instances []Upstream
	healthy   map[string]bool
	counter   uint64
}

// NewBalancer builds a Balancer over instances, all initially healthy.
func NewBalancer(instances []Upstream) *Balancer {
	healthy := make(map[string]bool, len(instances))
	for _, u := range instances {
		healthy[u.BaseURL] = true
	}
	return &Balancer{instances: instances, healthy: healthy}
}

// Next returns the next upstream in round-robin order, preferring
// healthy instances. Returns false if there are no instances at all.
func (b *Balancer) Next() (Upstream, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.instances) == 0 {
		return Upstream{}, false
	}

	n := len(b.instances)
	start := int(atomic.AddUint64(&b.counter, 1)-1) % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		u := b.instances[idx]
		if b.healthy[u.BaseURL] {
			return u, true
		}
	}
	// every instance unhealthy: fail open on the first one rather than
	// refuse the request.
	return b.instances[start], true
}

// SetHealthy records the outcome of a health probe for an instance.
func (b *Balancer) SetHealthy(baseURL string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.healthy[baseURL] = ok
}

// Instances returns a copy of the configured instance list, for the
// health check sweeper to iterate over.
func (b *Balancer) Instances() []Upstream {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Upstream, len(b.instances))
	copy(out, b.instances)
	return out
}
