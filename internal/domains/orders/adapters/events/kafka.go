// Package events publishes order lifecycle events to kafka. Publishing is
// fire and forget; a broker outage must never fail an order.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type orderCreatedPayload struct {
	Event       string          `json:"event"`
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      string          `json:"userId"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

type statusChangedPayload struct {
	Event       string    `json:"event"`
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// KafkaPublisher implements ports.EventPublisher with an async writer.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			Async:                  true,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
		logger: logger,
	}
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order *domain.Order) {
	p.publish(ctx, order.ID, orderCreatedPayload{
		Event:       EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		ItemCount:   len(order.Items),
		OccurredAt:  time.Now(),
	})
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.Status) {
	p.publish(ctx, order.ID, statusChangedPayload{
		Event:       EventOrderStatusChanged,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		From:        string(previous),
		To:          string(order.Status),
		OccurredAt:  time.Now(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, payload any) {
	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("encoding order event", slog.String("error", err.Error()))
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.logger.Error("publishing order event", slog.String("error", err.Error()))
	}
}

// Close flushes buffered messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
