// Package memory is an in-memory order repository for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

var _ ports.Repository = (*Repository)(nil)

func (r *Repository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.OrderNumber == order.OrderNumber {
			return ports.ErrDuplicateOrderNumber
		}
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	cp := cloneOrder(order)
	r.orders[order.ID] = cp
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.ID]
	if !ok {
		return ports.ErrNotFound
	}
	existing.Status = order.Status
	existing.TrackingCode = order.TrackingCode
	existing.PaidAt = order.PaidAt
	existing.ShippedAt = order.ShippedAt
	existing.DeliveredAt = order.DeliveredAt
	existing.CancelledAt = order.CancelledAt
	existing.Payment.Status = order.Payment.Status
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) AppendStatusChange(_ context.Context, change *domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[change.OrderID]
	if !ok {
		return ports.ErrNotFound
	}
	change.CreatedAt = time.Now()
	order.StatusHistory = append([]domain.StatusChange{*change}, order.StatusHistory...)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter, params pagination.Params) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o *domain.Order) bool {
		return filter.Status == nil || o.Status == *filter.Status
	}, params)
}

func (r *Repository) ListByUser(_ context.Context, userID string, params pagination.Params) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o *domain.Order) bool {
		return o.UserID == userID
	}, params)
}

// collect filters, sorts newest first, and paginates. Callers hold the lock.
func (r *Repository) collect(keep func(*domain.Order) bool, params pagination.Params) ([]*domain.Order, int64, error) {
	var matched []*domain.Order
	for _, o := range r.orders {
		if keep(o) {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]*domain.Order, 0, end-start)
	for _, o := range matched[start:end] {
		out = append(out, cloneOrder(o))
	}
	return out, total, nil
}

func (r *Repository) LastOrderNumber(_ context.Context, prefix string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	last := ""
	for _, o := range r.orders {
		if strings.HasPrefix(o.OrderNumber, prefix+"-") && o.OrderNumber > last {
			last = o.OrderNumber
		}
	}
	return last, nil
}

func (r *Repository) CountAll(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *Repository) CountByStatus(_ context.Context, status domain.Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *Repository) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, o := range r.orders {
		if !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Repository) RevenueSince(_ context.Context, since time.Time, statuses []domain.Status) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, o := range r.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		for _, s := range statuses {
			if o.Status == s {
				sum = sum.Add(o.Total)
				break
			}
		}
	}
	return sum, nil
}

func (r *Repository) ListRecent(_ context.Context, limit int) ([]*domain.Order, error) {
	out, _, err := r.List(context.Background(), ports.ListFilter{}, pagination.Params{Page: 1, Limit: limit})
	return out, err
}

func (r *Repository) ListPendingBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, o := range r.orders {
		if o.Status == domain.StatusPending && o.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	cp.StatusHistory = append([]domain.StatusChange(nil), order.StatusHistory...)
	return &cp
}
