package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
)

// CartLine is one snapshotted cart item with its price at snapshot time.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"subtotal"`
}

// CartSnapshot is a consistent view of the buyer's cart at order time.
type CartSnapshot struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartProvider reads and clears the cart the storefront owns.
type CartProvider interface {
	Snapshot(ctx context.Context, userID string) (*CartSnapshot, error)
	Clear(ctx context.Context, userID string) error
}

// CouponEvaluator validates a code against the order value, returning nil
// terms when the coupon is missing or inapplicable.
type CouponEvaluator interface {
	Validate(ctx context.Context, code string, orderValue decimal.Decimal) (*domain.DiscountTerms, error)
}

// Address is the shipping destination owned by the users module.
type Address struct {
	ID         string
	UserID     string
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	ZipCode    string
}

// ErrAddressNotFound covers both a missing address and one owned by another
// user; callers must not be able to distinguish them.
var ErrAddressNotFound = errors.New("Endereço não encontrado")

// AddressReader looks up a shipping address scoped to its owner.
type AddressReader interface {
	GetOwned(ctx context.Context, addressID, userID string) (*Address, error)
}

// ErrStockNotFound signals a product without a tracked inventory row.
var ErrStockNotFound = errors.New("stock not tracked for product")

// InsufficientStockError reports a reservation shortage detected by the
// ledger, carrying the buyable amount.
type InsufficientStockError struct {
	ProductID string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s, available: %d", e.ProductID, e.Available)
}

// StockLedger is the inventory surface the order workflow consumes.
type StockLedger interface {
	AvailableStock(ctx context.Context, productID string) (int, error)
	ReserveStock(ctx context.Context, productID string, quantity int, reference string) error
	ConfirmReservation(ctx context.Context, productID string, quantity int, reference string) error
	ReleaseReservation(ctx context.Context, productID string, quantity int, reference string) error
}

// EventPublisher broadcasts order lifecycle events. Publishing is best
// effort; implementations log failures instead of surfacing them.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order *domain.Order)
	OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.Status)
}

// NopPublisher drops all events.
type NopPublisher struct{}

func (NopPublisher) OrderCreated(context.Context, *domain.Order)                        {}
func (NopPublisher) OrderStatusChanged(context.Context, *domain.Order, domain.Status) {}
