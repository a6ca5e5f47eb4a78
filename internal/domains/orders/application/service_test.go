package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/dominusaudio/commerce-api/internal/domains/orders/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
	"github.com/dominusaudio/commerce-api/internal/shared/tx"
)

type fakeOrderRepo struct {
	orders      map[string]*domain.Order
	history     []domain.StatusChange
	lastNumber  string
	failCreates int
	created     []*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	if r.failCreates > 0 {
		r.failCreates--
		return ports.ErrDuplicateOrderNumber
	}
	order.CreatedAt = time.Now()
	cp := *order
	r.orders[order.ID] = &cp
	r.created = append(r.created, &cp)
	r.lastNumber = order.OrderNumber
	r.history = append(r.history, order.StatusHistory...)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *domain.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return ports.ErrNotFound
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) AppendStatusChange(_ context.Context, change *domain.StatusChange) error {
	r.history = append(r.history, *change)
	return nil
}

func (r *fakeOrderRepo) List(_ context.Context, filter ports.ListFilter, params pagination.Params) ([]*domain.Order, int64, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string, params pagination.Params) ([]*domain.Order, int64, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) LastOrderNumber(_ context.Context, prefix string) (string, error) {
	return r.lastNumber, nil
}

func (r *fakeOrderRepo) CountAll(context.Context) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) CountByStatus(_ context.Context, status domain.Status) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) RevenueSince(_ context.Context, since time.Time, statuses []domain.Status) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.orders {
		for _, s := range statuses {
			if o.Status == s && !o.CreatedAt.Before(since) {
				sum = sum.Add(o.Total)
			}
		}
	}
	return sum, nil
}

func (r *fakeOrderRepo) ListRecent(_ context.Context, limit int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if len(out) == limit {
			break
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) ListPendingBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	for id, o := range r.orders {
		if o.Status == domain.StatusPending && o.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type ledgerCall struct {
	op        string
	productID string
	quantity  int
	reference string
}

type fakeLedger struct {
	available map[string]int
	calls     []ledgerCall
}

func (l *fakeLedger) AvailableStock(_ context.Context, productID string) (int, error) {
	n, ok := l.available[productID]
	if !ok {
		return 0, ports.ErrStockNotFound
	}
	return n, nil
}

func (l *fakeLedger) ReserveStock(_ context.Context, productID string, quantity int, reference string) error {
	n, ok := l.available[productID]
	if !ok {
		return ports.ErrStockNotFound
	}
	if n < quantity {
		return &ports.InsufficientStockError{ProductID: productID, Available: n}
	}
	l.calls = append(l.calls, ledgerCall{"reserve", productID, quantity, reference})
	return nil
}

func (l *fakeLedger) ConfirmReservation(_ context.Context, productID string, quantity int, reference string) error {
	l.calls = append(l.calls, ledgerCall{"confirm", productID, quantity, reference})
	return nil
}

func (l *fakeLedger) ReleaseReservation(_ context.Context, productID string, quantity int, reference string) error {
	l.calls = append(l.calls, ledgerCall{"release", productID, quantity, reference})
	return nil
}

func (l *fakeLedger) ops() []string {
	out := make([]string, 0, len(l.calls))
	for _, c := range l.calls {
		out = append(out, c.op)
	}
	return out
}

type fakeCarts struct {
	snapshot *ports.CartSnapshot
	cleared  []string
}

func (c *fakeCarts) Snapshot(_ context.Context, userID string) (*ports.CartSnapshot, error) {
	return c.snapshot, nil
}

func (c *fakeCarts) Clear(_ context.Context, userID string) error {
	c.cleared = append(c.cleared, userID)
	return nil
}

type fakeCoupons struct {
	terms *domain.DiscountTerms
	err   error
}

func (c *fakeCoupons) Validate(context.Context, string, decimal.Decimal) (*domain.DiscountTerms, error) {
	return c.terms, c.err
}

type fakeAddresses struct {
	owned map[string]string // addressID -> userID
}

func (a *fakeAddresses) GetOwned(_ context.Context, addressID, userID string) (*ports.Address, error) {
	if a.owned[addressID] != userID {
		return nil, ports.ErrAddressNotFound
	}
	return &ports.Address{ID: addressID, UserID: userID}, nil
}

type recordedEvent struct {
	kind     string
	orderID  string
	previous domain.Status
}

type recordingPublisher struct {
	events []recordedEvent
}

func (p *recordingPublisher) OrderCreated(_ context.Context, order *domain.Order) {
	p.events = append(p.events, recordedEvent{kind: "created", orderID: order.ID})
}

func (p *recordingPublisher) OrderStatusChanged(_ context.Context, order *domain.Order, previous domain.Status) {
	p.events = append(p.events, recordedEvent{kind: "status", orderID: order.ID, previous: previous})
}

type workflowFixture struct {
	svc       *Service
	repo      *fakeOrderRepo
	ledger    *fakeLedger
	carts     *fakeCarts
	coupons   *fakeCoupons
	addresses *fakeAddresses
	events    *recordingPublisher
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		repo: newFakeOrderRepo(),
		ledger: &fakeLedger{available: map[string]int{
			"prod-amp": 10,
			"prod-sub": 4,
		}},
		carts: &fakeCarts{snapshot: &ports.CartSnapshot{
			Items: []ports.CartLine{
				{ProductID: "prod-amp", Name: "Amplificador 800W", SKU: "AMP-800", Quantity: 2, UnitPrice: decimal.NewFromInt(500), LineTotal: decimal.NewFromInt(1000)},
				{ProductID: "prod-sub", Name: "Subwoofer 12\"", SKU: "SUB-12", Quantity: 1, UnitPrice: decimal.NewFromInt(350), LineTotal: decimal.NewFromInt(350)},
			},
			Subtotal: decimal.NewFromInt(1350),
		}},
		coupons:   &fakeCoupons{},
		addresses: &fakeAddresses{owned: map[string]string{"addr-1": "user-1"}},
		events:    &recordingPublisher{},
	}
	f.svc = NewService(f.repo, f.ledger, f.carts, f.coupons, f.addresses, f.events, tx.NopRunner{})
	return f
}

func createInput() types.CreateOrderInput {
	return types.CreateOrderInput{
		ShippingAddressID: "addr-1",
		PaymentMethod:     domain.PaymentPix,
		ShippingMethod:    "SEDEX",
		ShippingCost:      decimal.NewFromInt(30),
	}
}

func TestCreateOrder(t *testing.T) {
	f := newWorkflowFixture()

	order, err := f.svc.Create(context.Background(), "user-1", createInput())
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("BM-%d-00001", year), order.OrderNumber)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1380)), "total = subtotal + shipping, got %s", order.Total)
	assert.True(t, order.Discount.IsZero())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Amplificador 800W", order.Items[0].ProductName)
	assert.Equal(t, domain.PaymentStatusPending, order.Payment.Status)
	assert.True(t, order.Payment.Amount.Equal(order.Total))
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "Pedido criado", order.StatusHistory[0].Comment)

	require.Len(t, f.ledger.calls, 2)
	assert.Equal(t, ledgerCall{"reserve", "prod-amp", 2, order.ID}, f.ledger.calls[0])
	assert.Equal(t, ledgerCall{"reserve", "prod-sub", 1, order.ID}, f.ledger.calls[1])
	assert.Equal(t, []string{"user-1"}, f.carts.cleared)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, recordedEvent{kind: "created", orderID: order.ID}, f.events.events[0])
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newWorkflowFixture()
	f.carts.snapshot = &ports.CartSnapshot{Subtotal: decimal.Zero}

	_, err := f.svc.Create(context.Background(), "user-1", createInput())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.repo.created)
}

func TestCreateOrderForeignAddress(t *testing.T) {
	f := newWorkflowFixture()

	_, err := f.svc.Create(context.Background(), "user-2", createInput())
	require.ErrorIs(t, err, ports.ErrAddressNotFound)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newWorkflowFixture()
	f.ledger.available["prod-amp"] = 1

	_, err := f.svc.Create(context.Background(), "user-1", createInput())
	var shortage *InsufficientStockError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, "Amplificador 800W", shortage.ProductName)
	assert.Equal(t, 1, shortage.Available)
	assert.Empty(t, f.repo.created)
	assert.Empty(t, f.carts.cleared)
}

func TestCreateOrderUntrackedProduct(t *testing.T) {
	f := newWorkflowFixture()
	delete(f.ledger.available, "prod-sub")

	_, err := f.svc.Create(context.Background(), "user-1", createInput())
	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Subwoofer 12\"", unavailable.ProductName)
}

func TestCreateOrderCouponApplied(t *testing.T) {
	f := newWorkflowFixture()
	f.coupons.terms = &domain.DiscountTerms{
		Code:  "AUDIO10",
		Type:  domain.CouponPercentage,
		Value: decimal.NewFromInt(10),
	}

	input := createInput()
	input.CouponCode = "audio10"
	order, err := f.svc.Create(context.Background(), "user-1", input)
	require.NoError(t, err)

	assert.True(t, order.Discount.Equal(decimal.NewFromInt(135)), "got %s", order.Discount)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1245)), "got %s", order.Total)
	assert.Equal(t, "AUDIO10", order.CouponCode)
}

func TestCreateOrderCouponSoftFail(t *testing.T) {
	f := newWorkflowFixture()
	f.coupons.err = errors.New("cupom expirado")

	input := createInput()
	input.CouponCode = "EXPIRED"
	order, err := f.svc.Create(context.Background(), "user-1", input)
	require.NoError(t, err)

	assert.True(t, order.Discount.IsZero())
	assert.Empty(t, order.CouponCode)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1380)))
}

func TestCreateOrderRetriesDuplicateNumber(t *testing.T) {
	f := newWorkflowFixture()
	f.repo.failCreates = 2

	order, err := f.svc.Create(context.Background(), "user-1", createInput())
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, f.repo.created, 1)
}

func TestCreateOrderGivesUpAfterRetries(t *testing.T) {
	f := newWorkflowFixture()
	f.repo.failCreates = 3

	_, err := f.svc.Create(context.Background(), "user-1", createInput())
	require.ErrorIs(t, err, ports.ErrDuplicateOrderNumber)
}

func TestCreateOrderSequentialNumbers(t *testing.T) {
	f := newWorkflowFixture()

	first, err := f.svc.Create(context.Background(), "user-1", createInput())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), "user-1", createInput())
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("BM-%d-00001", year), first.OrderNumber)
	assert.Equal(t, fmt.Sprintf("BM-%d-00002", year), second.OrderNumber)
}

func (f *workflowFixture) createOrder(t *testing.T) *domain.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), "user-1", createInput())
	require.NoError(t, err)
	f.ledger.calls = nil
	f.events.events = nil
	return order
}

func TestConfirmPaymentSettlesReservations(t *testing.T) {
	f := newWorkflowFixture()
	order := f.createOrder(t)

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{
		Status:  domain.StatusPaymentConfirmed,
		Comment: "Pagamento aprovado",
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaymentConfirmed, updated.Status)
	assert.NotNil(t, updated.PaidAt)
	assert.Equal(t, domain.PaymentStatusPaid, updated.Payment.Status)
	assert.Equal(t, []string{"confirm", "confirm"}, f.ledger.ops())
	require.Len(t, f.repo.history, 2)
	assert.Equal(t, "admin-1", f.repo.history[1].CreatedBy)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.StatusPending, f.events.events[0].previous)
}

func TestUpdateStatusRejectsSkippedState(t *testing.T) {
	f := newWorkflowFixture()
	order := f.createOrder(t)

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{
		Status: domain.StatusShipped,
	}, "admin-1")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.ledger.calls)
}

func TestUpdateStatusRejectsRepeatedConfirmation(t *testing.T) {
	f := newWorkflowFixture()
	order := f.createOrder(t)

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{Status: domain.StatusPaymentConfirmed}, "admin-1")
	require.NoError(t, err)
	f.ledger.calls = nil

	_, err = f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{Status: domain.StatusPaymentConfirmed}, "admin-1")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.ledger.calls, "a repeated confirmation must not touch stock again")
}

func TestCancelUnpaidReleasesReservations(t *testing.T) {
	f := newWorkflowFixture()
	order := f.createOrder(t)

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{
		Status: domain.StatusCancelled,
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.NotNil(t, updated.CancelledAt)
	assert.Equal(t, []string{"release", "release"}, f.ledger.ops())
}

func TestCancelPaidKeepsStock(t *testing.T) {
	f := newWorkflowFixture()
	order := f.createOrder(t)

	_, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{Status: domain.StatusPaymentConfirmed}, "admin-1")
	require.NoError(t, err)
	f.ledger.calls = nil

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{Status: domain.StatusCancelled}, "admin-1")
	require.NoError(t, err)

	assert.Empty(t, f.ledger.calls, "reservations of a paid order were already settled")
	assert.Equal(t, domain.PaymentStatusRefunded, updated.Payment.Status)
}

func TestUpdateStatusStampsTrackingOnShipment(t *testing.T) {
	f := newWorkflowFixture()
	order := f.createOrder(t)

	for _, status := range []domain.Status{domain.StatusPaymentConfirmed, domain.StatusProcessing} {
		_, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{Status: status}, "admin-1")
		require.NoError(t, err)
	}

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, types.UpdateStatusInput{
		Status:       domain.StatusShipped,
		TrackingCode: "BR123456789",
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "BR123456789", updated.TrackingCode)
	assert.NotNil(t, updated.ShippedAt)
}

func TestFindByIDOwnership(t *testing.T) {
	f := newWorkflowFixture()
	order := f.createOrder(t)

	found, err := f.svc.FindByID(context.Background(), order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = f.svc.FindByID(context.Background(), order.ID, "user-2")
	require.ErrorIs(t, err, ErrForbidden)

	// admins skip the ownership check
	_, err = f.svc.FindByID(context.Background(), order.ID, "")
	require.NoError(t, err)
}

func TestCancelStalePending(t *testing.T) {
	f := newWorkflowFixture()
	stale := f.createOrder(t)
	f.repo.orders[stale.ID].CreatedAt = time.Now().Add(-80 * time.Hour)
	fresh := f.createOrder(t)

	n, err := f.svc.CancelStalePending(context.Background(), time.Now().Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cancelled, err := f.repo.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	kept, err := f.repo.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, kept.Status)

	var comments []string
	for _, h := range f.repo.history {
		if h.OrderID == stale.ID && h.Status == domain.StatusCancelled {
			comments = append(comments, h.Comment)
		}
	}
	assert.Equal(t, []string{"Pedido expirado"}, comments)
}

func TestGetDashboardStats(t *testing.T) {
	f := newWorkflowFixture()
	first := f.createOrder(t)
	f.createOrder(t)
	_, err := f.svc.UpdateStatus(context.Background(), first.ID, types.UpdateStatusInput{Status: domain.StatusPaymentConfirmed}, "admin-1")
	require.NoError(t, err)

	stats, err := f.svc.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(2), stats.TodayOrders)
	assert.True(t, stats.MonthRevenue.Equal(decimal.NewFromInt(1380)), "got %s", stats.MonthRevenue)
	assert.Len(t, stats.RecentOrders, 2)
}
