package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordertypes "github.com/dominusaudio/commerce-api/internal/domains/orders/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

const tracerName = "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order workflow with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// Create places an order from the buyer's cart with instrumentation.
func (s *Service) Create(ctx context.Context, userID string, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.Create",
		attribute.String("order.user_id", userID),
		attribute.String("order.payment_method", string(input.PaymentMethod)),
	)
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("user.id", userID))
	order, err := s.inner.Create(ctx, userID, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	s.metrics.recordCreated(ctx, order.Payment.Method)
	s.logInfo(ctx, "order created",
		slog.String("order.id", order.ID),
		slog.String("order.number", order.OrderNumber),
		slog.String("order.total", order.Total.String()),
	)
	return order, nil
}

// FindByID loads one order.
func (s *Service) FindByID(ctx context.Context, id, requesterID string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.FindByID", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.FindByID(ctx, id, requesterID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return order, nil
}

// FindAll lists orders for the back office.
func (s *Service) FindAll(ctx context.Context, filter ports.ListFilter, params pagination.Params) (*pagination.Page[*domain.Order], error) {
	ctx, span := s.startSpan(ctx, "Service.FindAll")
	defer span.End()

	page, err := s.inner.FindAll(ctx, filter, params)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(page.Data)))
	return page, nil
}

// FindByUser lists the caller's own orders.
func (s *Service) FindByUser(ctx context.Context, userID string, params pagination.Params) (*pagination.Page[*domain.Order], error) {
	ctx, span := s.startSpan(ctx, "Service.FindByUser", attribute.String("order.user_id", userID))
	defer span.End()

	page, err := s.inner.FindByUser(ctx, userID, params)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list user orders", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(page.Data)))
	return page, nil
}

// UpdateStatus applies an admin transition with instrumentation.
func (s *Service) UpdateStatus(ctx context.Context, id string, input ordertypes.UpdateStatusInput, actorID string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateStatus",
		attribute.String("order.id", id),
		attribute.String("order.status.next", string(input.Status)),
	)
	defer span.End()

	s.logInfo(ctx, "updating order status",
		slog.String("order.id", id),
		slog.String("status", string(input.Status)),
	)
	order, err := s.inner.UpdateStatus(ctx, id, input, actorID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.String("order.id", id), slog.String("status", string(input.Status)))
	}
	s.metrics.recordStatusChanged(ctx, order.Status)
	s.logInfo(ctx, "order status updated",
		slog.String("order.id", order.ID),
		slog.String("status", string(order.Status)),
	)
	return order, nil
}

// GetDashboardStats aggregates the admin rollup.
func (s *Service) GetDashboardStats(ctx context.Context) (*ordertypes.DashboardStats, error) {
	ctx, span := s.startSpan(ctx, "Service.GetDashboardStats")
	defer span.End()

	stats, err := s.inner.GetDashboardStats(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to aggregate dashboard stats")
	}
	return stats, nil
}

// CancelStalePending expires unpaid orders older than cutoff.
func (s *Service) CancelStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	ctx, span := s.startSpan(ctx, "Service.CancelStalePending",
		attribute.String("order.cutoff", cutoff.Format(time.RFC3339)),
	)
	defer span.End()

	cancelled, err := s.inner.CancelStalePending(ctx, cutoff)
	if err != nil {
		return cancelled, s.handleError(ctx, span, err, "failed to cancel stale orders")
	}
	span.SetAttributes(attribute.Int("order.cancelled.count", cancelled))
	s.metrics.recordExpired(ctx, cancelled)
	s.logInfo(ctx, "stale orders cancelled", slog.Int("count", cancelled))
	return cancelled, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated metric.Int64Counter
	statusChanges metric.Int64Counter
	ordersExpired metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders placed"))
	statusChanges, _ := m.Int64Counter("orders.service.status_changed", metric.WithDescription("Number of order status transitions"))
	ordersExpired, _ := m.Int64Counter("orders.service.expired", metric.WithDescription("Number of stale pending orders cancelled"))
	return serviceMetrics{
		ordersCreated: ordersCreated,
		statusChanges: statusChanges,
		ordersExpired: ordersExpired,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, method domain.PaymentMethod) {
	addCounter(ctx, m.ordersCreated, 1, attribute.String("order.payment_method", string(method)))
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.statusChanges, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordExpired(ctx context.Context, count int) {
	addCounter(ctx, m.ordersExpired, int64(count))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
