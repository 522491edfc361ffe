package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry holds the carts of HTTP clients. Carts idle for longer than the TTL are dropped.
type Registry struct {
	mu    sync.RWMutex
	carts map[string]*Cart
	ttl   time.Duration
	log   *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(ttl time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		carts: make(map[string]*Cart),
		ttl:   ttl,
		log:   log,
	}
}

// Create opens a new cart and returns its id
func (r *Registry) Create() (string, *Cart) {
	id := uuid.New().String()
	c := New()

	r.mu.Lock()
	r.carts[id] = c
	r.mu.Unlock()
	return id, c
}

// Get returns the cart with id and marks it used
func (r *Registry) Get(id string) (*Cart, bool) {
	r.mu.RLock()
	c, ok := r.carts[id]
	r.mu.RUnlock()
	if ok {
		c.touch()
	}
	return c, ok
}

// Delete drops the cart with id
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, id)
}

// Len returns the number of open carts
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}

// Sweep drops carts unused since before now minus the TTL and returns how many were dropped
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, c := range r.carts {
		if c.lastUsed().Before(cutoff) {
			delete(r.carts, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps periodically until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.log.Debug("Dropped idle carts", zap.Int("count", n))
			}
		}
	}
}
