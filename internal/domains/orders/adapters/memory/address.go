package memory

import (
	"context"
	"sync"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

// AddressReader is an in-memory address lookup for local runs and tests.
type AddressReader struct {
	mu        sync.RWMutex
	addresses map[string]*ports.Address
}

func NewAddressReader() *AddressReader {
	return &AddressReader{addresses: map[string]*ports.Address{}}
}

var _ ports.AddressReader = (*AddressReader)(nil)

func (r *AddressReader) Seed(addr *ports.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addresses[addr.ID] = addr
}

func (r *AddressReader) GetOwned(_ context.Context, addressID, userID string) (*ports.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addr, ok := r.addresses[addressID]
	if !ok || addr.UserID != userID {
		return nil, ports.ErrAddressNotFound
	}
	cp := *addr
	return &cp, nil
}
