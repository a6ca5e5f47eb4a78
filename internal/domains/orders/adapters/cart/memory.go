package cart

import (
	"context"
	"sync"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

// MemoryProvider is an in-memory cart store for local runs and tests.
type MemoryProvider struct {
	mu    sync.RWMutex
	carts map[string]*ports.CartSnapshot
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{carts: map[string]*ports.CartSnapshot{}}
}

var _ ports.CartProvider = (*MemoryProvider)(nil)

// Seed installs a snapshot for a user.
func (p *MemoryProvider) Seed(userID string, snapshot *ports.CartSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.carts[userID] = snapshot
}

func (p *MemoryProvider) Snapshot(_ context.Context, userID string) (*ports.CartSnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snapshot, ok := p.carts[userID]
	if !ok {
		return &ports.CartSnapshot{}, nil
	}
	return snapshot, nil
}

func (p *MemoryProvider) Clear(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.carts, userID)
	return nil
}
