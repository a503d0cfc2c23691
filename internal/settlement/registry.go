package settlement

import (
	"context"
	"sync"
)

// Registry remembers settled wager ids so a redelivered settlement call
// returns the original outcome instead of moving the balance twice.
type Registry interface {
	Lookup(ctx context.Context, wagerID string) (Result, bool, error)
	Store(ctx context.Context, wagerID string, result Result) error
}

// MemoryRegistry is a process-local registry for tests and single-node dev
// runs.
type MemoryRegistry struct {
	mu      sync.RWMutex
	settled map[string]Result
}

// NewMemoryRegistry constructs an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{settled: make(map[string]Result)}
}

func (r *MemoryRegistry) Lookup(_ context.Context, wagerID string) (Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.settled[wagerID]
	return result, ok, nil
}

func (r *MemoryRegistry) Store(_ context.Context, wagerID string, result Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled[wagerID] = result
	return nil
}
