package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/dominusaudio/commerce-api/internal/domains/orders/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
	"github.com/dominusaudio/commerce-api/internal/shared/tx"
)

// Attempts at order creation when the generated number loses the
// uniqueness race against a concurrent creation.
const orderNumberAttempts = 3

// revenueStatuses are the states counted as realized revenue.
var revenueStatuses = []domain.Status{
	domain.StatusPaymentConfirmed,
	domain.StatusProcessing,
	domain.StatusShipped,
	domain.StatusDelivered,
}

// Service orchestrates the order workflow: cart validation, stock
// availability, discounts, atomic persistence, reservations, and the status
// state machine with its compensating stock actions.
type Service struct {
	repo      ports.Repository
	stock     ports.StockLedger
	carts     ports.CartProvider
	coupons   ports.CouponEvaluator
	addresses ports.AddressReader
	events    ports.EventPublisher
	tx        tx.Runner
}

// NewService wires the workflow engine with its collaborators.
func NewService(
	repo ports.Repository,
	stock ports.StockLedger,
	carts ports.CartProvider,
	coupons ports.CouponEvaluator,
	addresses ports.AddressReader,
	events ports.EventPublisher,
	runner tx.Runner,
) *Service {
	if events == nil {
		events = ports.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		stock:     stock,
		carts:     carts,
		coupons:   coupons,
		addresses: addresses,
		events:    events,
		tx:        runner,
	}
}

// Create turns the buyer's cart into a persisted order. The order graph, the
// per-line reservations, and the cart clear commit as one unit; any failure
// rolls everything back.
func (s *Service) Create(ctx context.Context, userID string, input types.CreateOrderInput) (*domain.Order, error) {
	cart, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if _, err := s.addresses.GetOwned(ctx, input.ShippingAddressID, userID); err != nil {
		return nil, err
	}

	// Pre-check availability against the latest committed state. This does
	// not reserve; the reservations inside the transaction re-check under a
	// row lock.
	for _, line := range cart.Items {
		available, err := s.stock.AvailableStock(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, ports.ErrStockNotFound) {
				return nil, &ProductUnavailableError{ProductName: line.Name}
			}
			return nil, err
		}
		if available < line.Quantity {
			return nil, &InsufficientStockError{ProductName: line.Name, Available: available}
		}
	}

	discount := decimal.Zero
	couponCode := ""
	if input.CouponCode != "" {
		// Soft fail: an invalid, expired, or inapplicable coupon leaves the
		// discount at zero and the order proceeds.
		if terms, err := s.coupons.Validate(ctx, input.CouponCode, cart.Subtotal); err == nil && terms != nil {
			discount = terms.DiscountFor(cart.Subtotal)
			couponCode = terms.Code
		}
	}
	total := cart.Subtotal.Add(input.ShippingCost).Sub(discount)

	var created *domain.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		err = s.tx.InTx(ctx, func(ctx context.Context) error {
			now := time.Now()
			last, err := s.repo.LastOrderNumber(ctx, domain.OrderNumberPrefix(now.Year()))
			if err != nil {
				return err
			}
			number, err := domain.NextOrderNumber(last, now.Year())
			if err != nil {
				return err
			}
			order := s.assembleOrder(userID, number, cart, input, discount, couponCode, total)
			if err := s.repo.Create(ctx, order); err != nil {
				return err
			}
			for _, line := range cart.Items {
				if err := s.reserveLine(ctx, line, order.ID); err != nil {
					return err
				}
			}
			if err := s.carts.Clear(ctx, userID); err != nil {
				return err
			}
			created = order
			return nil
		})
		if !errors.Is(err, ports.ErrDuplicateOrderNumber) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	s.events.OrderCreated(ctx, created)
	return created, nil
}

func (s *Service) assembleOrder(
	userID, number string,
	cart *ports.CartSnapshot,
	input types.CreateOrderInput,
	discount decimal.Decimal,
	couponCode string,
	total decimal.Decimal,
) *domain.Order {
	orderID := uuid.NewString()
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		sku := line.SKU
		if sku == "" {
			sku = line.ProductID
		}
		items = append(items, domain.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			ProductSKU:  sku,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.LineTotal,
		})
	}
	return &domain.Order{
		ID:                orderID,
		OrderNumber:       number,
		UserID:            userID,
		Status:            domain.StatusPending,
		Subtotal:          cart.Subtotal,
		ShippingCost:      input.ShippingCost,
		Discount:          discount,
		Total:             total,
		ShippingAddressID: input.ShippingAddressID,
		ShippingMethod:    input.ShippingMethod,
		Notes:             input.Notes,
		CouponCode:        couponCode,
		Items:             items,
		Payment: domain.Payment{
			ID:      uuid.NewString(),
			OrderID: orderID,
			Method:  input.PaymentMethod,
			Status:  domain.PaymentStatusPending,
			Amount:  total,
		},
		StatusHistory: []domain.StatusChange{{
			ID:      uuid.NewString(),
			OrderID: orderID,
			Status:  domain.StatusPending,
			Comment: "Pedido criado",
		}},
	}
}

func (s *Service) reserveLine(ctx context.Context, line ports.CartLine, orderID string) error {
	err := s.stock.ReserveStock(ctx, line.ProductID, line.Quantity, orderID)
	if err == nil {
		return nil
	}
	var shortage *ports.InsufficientStockError
	if errors.As(err, &shortage) {
		return &InsufficientStockError{ProductName: line.Name, Available: shortage.Available}
	}
	if errors.Is(err, ports.ErrStockNotFound) {
		return &ProductUnavailableError{ProductName: line.Name}
	}
	return err
}

// UpdateStatus applies an admin transition. The order update, the history
// append, and the per-line stock side effects commit as one unit.
func (s *Service) UpdateStatus(ctx context.Context, id string, input types.UpdateStatusInput, actorID string) (*domain.Order, error) {
	var updated *domain.Order
	var previous domain.Status
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous = order.Status
		wasPaid := order.Paid()
		if err := order.ApplyStatus(input.Status, time.Now()); err != nil {
			return mapStatusError(err)
		}
		if input.Status == domain.StatusShipped && input.TrackingCode != "" {
			order.TrackingCode = input.TrackingCode
		}

		switch input.Status {
		case domain.StatusPaymentConfirmed:
			// entry to PAYMENT_CONFIRMED converts every reservation into an
			// actual stock decrement
			order.Payment.Status = domain.PaymentStatusPaid
			for _, item := range order.Items {
				if item.ProductID == "" {
					continue
				}
				if err := s.stock.ConfirmReservation(ctx, item.ProductID, item.Quantity, order.ID); err != nil {
					return err
				}
			}
		case domain.StatusCancelled:
			if wasPaid {
				order.Payment.Status = domain.PaymentStatusRefunded
			}
			// reservations of a paid order were already settled; releasing
			// them again would corrupt the reserved count
			if !wasPaid {
				for _, item := range order.Items {
					if item.ProductID == "" {
						continue
					}
					if err := s.stock.ReleaseReservation(ctx, item.ProductID, item.Quantity, order.ID); err != nil {
						return err
					}
				}
			}
		}

		if err := s.repo.Update(ctx, order); err != nil {
			return err
		}
		change := &domain.StatusChange{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			Status:    input.Status,
			Comment:   input.Comment,
			CreatedBy: actorID,
		}
		if err := s.repo.AppendStatusChange(ctx, change); err != nil {
			return err
		}
		order.StatusHistory = append([]domain.StatusChange{*change}, order.StatusHistory...)
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.OrderStatusChanged(ctx, updated, previous)
	return updated, nil
}

func mapStatusError(err error) error {
	if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrInvalidStatus) {
		return ErrInvalidTransition
	}
	return err
}

// FindByID loads one order. A non-empty requesterID enforces ownership.
func (s *Service) FindByID(ctx context.Context, id, requesterID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && order.UserID != requesterID {
		return nil, ErrForbidden
	}
	return order, nil
}

// FindAll lists orders for the back office, optionally filtered by status.
func (s *Service) FindAll(ctx context.Context, filter ports.ListFilter, params pagination.Params) (*pagination.Page[*domain.Order], error) {
	orders, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(orders, total, params), nil
}

// FindByUser lists the caller's own orders.
func (s *Service) FindByUser(ctx context.Context, userID string, params pagination.Params) (*pagination.Page[*domain.Order], error) {
	orders, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(orders, total, params), nil
}

// GetDashboardStats aggregates the admin rollup. Pure reads, no transaction.
func (s *Service) GetDashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thirtyDaysAgo := now.AddDate(0, 0, -30)

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	today, err := s.repo.CountCreatedSince(ctx, startOfToday)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.RevenueSince(ctx, thirtyDaysAgo, revenueStatuses)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListRecent(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &types.DashboardStats{
		TotalOrders:   total,
		PendingOrders: pending,
		TodayOrders:   today,
		MonthRevenue:  revenue,
		RecentOrders:  recent,
	}, nil
}

// CancelStalePending cancels unpaid orders created before cutoff, releasing
// their reservations through the regular transition path.
func (s *Service) CancelStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.repo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	var errs error
	for _, id := range ids {
		if _, err := s.UpdateStatus(ctx, id, types.UpdateStatusInput{
			Status:  domain.StatusCancelled,
			Comment: "Pedido expirado",
		}, ""); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		cancelled++
	}
	return cancelled, errs
}

var _ ports.Service = (*Service)(nil)
