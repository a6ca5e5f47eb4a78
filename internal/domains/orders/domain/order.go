package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the order state machine:
// PENDING → PAYMENT_CONFIRMED → PROCESSING → SHIPPED → DELIVERED, with
// CANCELLED reachable from any non-terminal state.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusPaymentConfirmed Status = "PAYMENT_CONFIRMED"
	StatusProcessing       Status = "PROCESSING"
	StatusShipped          Status = "SHIPPED"
	StatusDelivered        Status = "DELIVERED"
	StatusCancelled        Status = "CANCELLED"
)

var successor = map[Status]Status{
	StatusPending:          StatusPaymentConfirmed,
	StatusPaymentConfirmed: StatusProcessing,
	StatusProcessing:       StatusShipped,
	StatusShipped:          StatusDelivered,
}

// ValidStatus reports whether s names a known state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaymentConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo allows only the immediate successor in the chain, plus
// cancellation from any non-terminal state. A state can therefore never be
// entered twice, which keeps the entry side effects from firing twice.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return successor[s] == next
}

// PaymentMethod enumerates the supported checkout methods.
type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "PIX"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentBoleto     PaymentMethod = "BOLETO"
)

// PaymentStatus tracks the payment record. No external processor is called;
// the field is bookkeeping only.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

var (
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("transição de status inválida")
)

// Order is the purchase aggregate. Items, payment, and status history are
// owned by composition and persist with it.
type Order struct {
	ID                string
	OrderNumber       string
	UserID            string
	Status            Status
	Subtotal          decimal.Decimal
	ShippingCost      decimal.Decimal
	Discount          decimal.Decimal
	Total             decimal.Decimal
	ShippingAddressID string
	ShippingMethod    string
	Notes             string
	TrackingCode      string
	CouponCode        string
	Items             []OrderItem
	Payment           Payment
	StatusHistory     []StatusChange
	PaidAt            *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ApplyStatus transitions the order, stamping the entry timestamp exactly
// once on first entry to the corresponding state.
func (o *Order) ApplyStatus(next Status, now time.Time) error {
	if !ValidStatus(next) {
		return ErrInvalidStatus
	}
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	switch next {
	case StatusPaymentConfirmed:
		o.PaidAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	return nil
}

// Paid reports whether payment was ever confirmed. Reservations of a paid
// order were already converted into stock decrements, so cancellation must
// not release them again.
func (o *Order) Paid() bool {
	return o.PaidAt != nil
}

// OrderItem snapshots one cart line at order time. Prices are copied and
// never recomputed from the live catalog.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	ProductSKU  string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Payment is the single payment record of an order.
type Payment struct {
	ID        string
	OrderID   string
	Method    PaymentMethod
	Status    PaymentStatus
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusChange is one append-only status history entry.
type StatusChange struct {
	ID        string
	OrderID   string
	Status    Status
	Comment   string
	CreatedBy string
	CreatedAt time.Time
}
