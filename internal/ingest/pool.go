package ingest

import "sync"

// Pool is an ordered set of equivalent upstream endpoints selected
// round-robin. Failover is reactive: a failed request moves to the next
// endpoint, the pool itself never removes members.
type Pool struct {
	mu        sync.Mutex
	endpoints []string
	next      int
}

// NewPool creates a pool over the given endpoints, preserving order.
func NewPool(endpoints []string) *Pool {
	return &Pool{endpoints: append([]string(nil), endpoints...)}
}

// Next returns the next endpoint in rotation.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	endpoint := p.endpoints[p.next]
	p.next = (p.next + 1) % len(p.endpoints)
	return endpoint
}

// Endpoints returns a copy of the pool members.
func (p *Pool) Endpoints() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.endpoints...)
}

// Size returns the number of pool members.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}
