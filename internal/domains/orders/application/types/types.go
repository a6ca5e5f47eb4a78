// Package types holds the request models and projections of the orders
// application layer.
package types

import (
	"github.com/shopspring/decimal"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
)

// CreateOrderInput is a validated order-creation request. The cart itself is
// read from the cart provider, never from the request.
type CreateOrderInput struct {
	ShippingAddressID string
	PaymentMethod     domain.PaymentMethod
	ShippingMethod    string
	ShippingCost      decimal.Decimal
	CouponCode        string
	Notes             string
}

// UpdateStatusInput is a validated admin status transition request.
type UpdateStatusInput struct {
	Status       domain.Status
	Comment      string
	TrackingCode string
}

// DashboardStats is the admin rollup.
type DashboardStats struct {
	TotalOrders   int64
	PendingOrders int64
	TodayOrders   int64
	MonthRevenue  decimal.Decimal
	RecentOrders  []*domain.Order
}
