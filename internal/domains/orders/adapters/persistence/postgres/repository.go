// Package postgres persists the order aggregate with gorm.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	platformpostgres "github.com/dominusaudio/commerce-api/internal/platform/postgres"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

// OrderRecord is the gorm model backing the orders table.
type OrderRecord struct {
	ID                string          `gorm:"type:uuid;primaryKey"`
	OrderNumber       string          `gorm:"uniqueIndex;not null"`
	UserID            string          `gorm:"type:uuid;index;not null"`
	Status            string          `gorm:"index;not null"`
	Subtotal          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ShippingCost      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ShippingAddressID string          `gorm:"type:uuid;not null"`
	ShippingMethod    string
	Notes             string
	TrackingCode      string
	CouponCode        string
	PaidAt            *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Items   []OrderItemRecord    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment PaymentRecord        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []StatusChangeRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderRecord) TableName() string { return "orders" }

// OrderItemRecord snapshots one purchased line.
type OrderItemRecord struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	OrderID     string          `gorm:"type:uuid;index;not null"`
	ProductID   string          `gorm:"type:uuid;index;not null"`
	ProductName string          `gorm:"not null"`
	ProductSKU  string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time
}

func (OrderItemRecord) TableName() string { return "order_items" }

// PaymentRecord is the order's single payment row.
type PaymentRecord struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	OrderID   string          `gorm:"type:uuid;uniqueIndex;not null"`
	Method    string          `gorm:"not null"`
	Status    string          `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PaymentRecord) TableName() string { return "payments" }

// StatusChangeRecord is one append-only history row.
type StatusChangeRecord struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	OrderID   string `gorm:"type:uuid;index;not null"`
	Status    string `gorm:"not null"`
	Comment   string
	CreatedBy string
	CreatedAt time.Time
}

func (StatusChangeRecord) TableName() string { return "order_status_history" }

// Repository implements ports.Repository on postgres. All queries resolve
// the gorm handle from the context so calls inside a transaction join it.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ ports.Repository = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	db := platformpostgres.FromContext(ctx, r.db)
	rec := toOrderRecord(order)
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrDuplicateOrderNumber
		}
		return err
	}
	order.CreatedAt = rec.CreatedAt
	order.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	var rec OrderRecord
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return rec.toDomain(), nil
}

func (r *Repository) Update(ctx context.Context, order *domain.Order) error {
	db := platformpostgres.FromContext(ctx, r.db)
	res := db.WithContext(ctx).Model(&OrderRecord{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":        string(order.Status),
			"tracking_code": order.TrackingCode,
			"paid_at":       order.PaidAt,
			"shipped_at":    order.ShippedAt,
			"delivered_at":  order.DeliveredAt,
			"cancelled_at":  order.CancelledAt,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return db.WithContext(ctx).Model(&PaymentRecord{}).
		Where("order_id = ?", order.ID).
		Updates(map[string]any{
			"status":     string(order.Payment.Status),
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *Repository) AppendStatusChange(ctx context.Context, change *domain.StatusChange) error {
	db := platformpostgres.FromContext(ctx, r.db)
	rec := StatusChangeRecord{
		ID:        change.ID,
		OrderID:   change.OrderID,
		Status:    string(change.Status),
		Comment:   change.Comment,
		CreatedBy: change.CreatedBy,
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	change.ID = rec.ID
	change.CreatedAt = rec.CreatedAt
	return nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter, params pagination.Params) ([]*domain.Order, int64, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	q := db.WithContext(ctx).Model(&OrderRecord{})
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	return r.page(ctx, q, params)
}

func (r *Repository) ListByUser(ctx context.Context, userID string, params pagination.Params) ([]*domain.Order, int64, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	q := db.WithContext(ctx).Model(&OrderRecord{}).Where("user_id = ?", userID)
	return r.page(ctx, q, params)
}

func (r *Repository) page(ctx context.Context, q *gorm.DB, params pagination.Params) ([]*domain.Order, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []OrderRecord
	err := q.
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(recs))
	for i := range recs {
		orders = append(orders, recs[i].toDomain())
	}
	return orders, total, nil
}

func (r *Repository) LastOrderNumber(ctx context.Context, prefix string) (string, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	var number string
	err := db.WithContext(ctx).Model(&OrderRecord{}).
		Where("order_number LIKE ?", prefix+"-%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	var n int64
	err := db.WithContext(ctx).Model(&OrderRecord{}).Count(&n).Error
	return n, err
}

func (r *Repository) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	var n int64
	err := db.WithContext(ctx).Model(&OrderRecord{}).
		Where("status = ?", string(status)).Count(&n).Error
	return n, err
}

func (r *Repository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	var n int64
	err := db.WithContext(ctx).Model(&OrderRecord{}).
		Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *Repository) RevenueSince(ctx context.Context, since time.Time, statuses []domain.Status) (decimal.Decimal, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	in := make([]string, 0, len(statuses))
	for _, s := range statuses {
		in = append(in, string(s))
	}
	var revenue decimal.Decimal
	err := db.WithContext(ctx).Model(&OrderRecord{}).
		Select("COALESCE(SUM(total), 0)").
		Where("created_at >= ? AND status IN ?", since, in).
		Row().Scan(&revenue)
	if err != nil {
		return decimal.Zero, err
	}
	return revenue, nil
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	var recs []OrderRecord
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(recs))
	for i := range recs {
		orders = append(orders, recs[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	db := platformpostgres.FromContext(ctx, r.db)
	var ids []string
	err := db.WithContext(ctx).Model(&OrderRecord{}).
		Where("status = ? AND created_at < ?", string(domain.StatusPending), cutoff).
		Pluck("id", &ids).Error
	return ids, err
}

func toOrderRecord(order *domain.Order) *OrderRecord {
	rec := &OrderRecord{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		UserID:            order.UserID,
		Status:            string(order.Status),
		Subtotal:          order.Subtotal,
		ShippingCost:      order.ShippingCost,
		Discount:          order.Discount,
		Total:             order.Total,
		ShippingAddressID: order.ShippingAddressID,
		ShippingMethod:    order.ShippingMethod,
		Notes:             order.Notes,
		TrackingCode:      order.TrackingCode,
		CouponCode:        order.CouponCode,
		PaidAt:            order.PaidAt,
		ShippedAt:         order.ShippedAt,
		DeliveredAt:       order.DeliveredAt,
		CancelledAt:       order.CancelledAt,
		Payment: PaymentRecord{
			ID:      order.Payment.ID,
			OrderID: order.ID,
			Method:  string(order.Payment.Method),
			Status:  string(order.Payment.Status),
			Amount:  order.Payment.Amount,
		},
	}
	for _, item := range order.Items {
		rec.Items = append(rec.Items, OrderItemRecord{
			ID:          item.ID,
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	for _, change := range order.StatusHistory {
		rec.History = append(rec.History, StatusChangeRecord{
			ID:        change.ID,
			OrderID:   order.ID,
			Status:    string(change.Status),
			Comment:   change.Comment,
			CreatedBy: change.CreatedBy,
		})
	}
	return rec
}

func (rec *OrderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:                rec.ID,
		OrderNumber:       rec.OrderNumber,
		UserID:            rec.UserID,
		Status:            domain.Status(rec.Status),
		Subtotal:          rec.Subtotal,
		ShippingCost:      rec.ShippingCost,
		Discount:          rec.Discount,
		Total:             rec.Total,
		ShippingAddressID: rec.ShippingAddressID,
		ShippingMethod:    rec.ShippingMethod,
		Notes:             rec.Notes,
		TrackingCode:      rec.TrackingCode,
		CouponCode:        rec.CouponCode,
		PaidAt:            rec.PaidAt,
		ShippedAt:         rec.ShippedAt,
		DeliveredAt:       rec.DeliveredAt,
		CancelledAt:       rec.CancelledAt,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
		Payment: domain.Payment{
			ID:        rec.Payment.ID,
			OrderID:   rec.Payment.OrderID,
			Method:    domain.PaymentMethod(rec.Payment.Method),
			Status:    domain.PaymentStatus(rec.Payment.Status),
			Amount:    rec.Payment.Amount,
			CreatedAt: rec.Payment.CreatedAt,
			UpdatedAt: rec.Payment.UpdatedAt,
		},
	}
	for _, item := range rec.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	for _, change := range rec.History {
		order.StatusHistory = append(order.StatusHistory, domain.StatusChange{
			ID:        change.ID,
			OrderID:   change.OrderID,
			Status:    domain.Status(change.Status),
			Comment:   change.Comment,
			CreatedBy: change.CreatedBy,
			CreatedAt: change.CreatedAt,
		})
	}
	return order
}
