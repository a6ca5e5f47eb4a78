package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

var (
	// ErrNotFound carries the user-facing message directly.
	ErrNotFound = errors.New("Pedido não encontrado")
	// ErrDuplicateOrderNumber signals the generated number lost the
	// uniqueness race; the workflow retries generation.
	ErrDuplicateOrderNumber = errors.New("order number already exists")
)

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status *domain.Status
}

// Repository persists the order aggregate and its owned rows.
type Repository interface {
	// Create persists the full graph (order, items, payment, initial history)
	// in one unit, returning ErrDuplicateOrderNumber on a number collision.
	Create(ctx context.Context, order *domain.Order) error
	// GetByID loads the aggregate with items, payment, and history.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Update writes the mutable order fields (status, timestamps, tracking).
	Update(ctx context.Context, order *domain.Order) error
	AppendStatusChange(ctx context.Context, change *domain.StatusChange) error
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]*domain.Order, int64, error)
	ListByUser(ctx context.Context, userID string, params pagination.Params) ([]*domain.Order, int64, error)
	// LastOrderNumber returns the most recently created number with the
	// given prefix, or "" when the year has no orders yet.
	LastOrderNumber(ctx context.Context, prefix string) (string, error)

	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.Status) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	RevenueSince(ctx context.Context, since time.Time, statuses []domain.Status) (decimal.Decimal, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
	// ListPendingBefore returns ids of PENDING orders created before cutoff.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}
