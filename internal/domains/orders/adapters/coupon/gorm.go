// Package coupon evaluates discount codes against the coupons table owned by
// the marketing side of the store. Read-only; usage accounting stays there.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

// CouponRecord mirrors the storefront's coupons table.
type CouponRecord struct {
	ID            string           `gorm:"type:uuid;primaryKey"`
	Code          string           `gorm:"uniqueIndex;not null"`
	Type          string           `gorm:"not null"`
	Value         decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	MinOrderValue *decimal.Decimal `gorm:"type:numeric(12,2)"`
	MaxDiscount   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	UsageLimit    *int
	UsageCount    int  `gorm:"not null;default:0"`
	IsActive      bool `gorm:"not null;default:true"`
	StartsAt      time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (CouponRecord) TableName() string { return "coupons" }

// GormEvaluator implements ports.CouponEvaluator with the storefront's
// eligibility rules.
type GormEvaluator struct {
	db *gorm.DB
}

func NewGormEvaluator(db *gorm.DB) *GormEvaluator {
	return &GormEvaluator{db: db}
}

var _ ports.CouponEvaluator = (*GormEvaluator)(nil)

func (e *GormEvaluator) Validate(ctx context.Context, code string, orderValue decimal.Decimal) (*domain.DiscountTerms, error) {
	var rec CouponRecord
	err := e.db.WithContext(ctx).
		First(&rec, "code = ?", strings.ToUpper(code)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("Cupom não encontrado")
		}
		return nil, err
	}
	if !rec.IsActive {
		return nil, errors.New("Cupom inativo")
	}
	now := time.Now()
	if now.Before(rec.StartsAt) || now.After(rec.ExpiresAt) {
		return nil, errors.New("Cupom fora do período de validade")
	}
	if rec.UsageLimit != nil && rec.UsageCount >= *rec.UsageLimit {
		return nil, errors.New("Cupom esgotado")
	}
	if rec.MinOrderValue != nil && orderValue.LessThan(*rec.MinOrderValue) {
		return nil, fmt.Errorf("Valor mínimo do pedido: %s", rec.MinOrderValue.StringFixed(2))
	}
	return &domain.DiscountTerms{
		Code:        rec.Code,
		Type:        domain.CouponType(rec.Type),
		Value:       rec.Value,
		MaxDiscount: rec.MaxDiscount,
	}, nil
}
