package ports

import (
	"context"
	"time"

	types "github.com/dominusaudio/commerce-api/internal/domains/orders/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

// Service exposes the order workflow use cases to adapters.
type Service interface {
	Create(ctx context.Context, userID string, input types.CreateOrderInput) (*domain.Order, error)
	// FindByID enforces ownership when requesterID is non-empty; admins pass "".
	FindByID(ctx context.Context, id, requesterID string) (*domain.Order, error)
	FindAll(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[*domain.Order], error)
	FindByUser(ctx context.Context, userID string, params pagination.Params) (*pagination.Page[*domain.Order], error)
	UpdateStatus(ctx context.Context, id string, input types.UpdateStatusInput, actorID string) (*domain.Order, error)
	GetDashboardStats(ctx context.Context) (*types.DashboardStats, error)
	// CancelStalePending cancels unpaid orders created before cutoff,
	// releasing their reservations. Returns how many were cancelled.
	CancelStalePending(ctx context.Context, cutoff time.Time) (int, error)
}
