package domain

import "github.com/shopspring/decimal"

// CouponType selects how a discount is computed from the order subtotal.
type CouponType string

const (
	CouponPercentage CouponType = "PERCENTAGE"
	CouponFixed      CouponType = "FIXED"
)

// DiscountTerms is what the coupon evaluator returns for an applicable
// coupon. The workflow only applies the terms; coupon lifecycle is owned
// elsewhere.
type DiscountTerms struct {
	Code        string
	Type        CouponType
	Value       decimal.Decimal
	MaxDiscount *decimal.Decimal
}

// DiscountFor computes the discount against a subtotal. Percentage coupons
// are capped at MaxDiscount when one is set; fixed coupons yield Value.
func (t DiscountTerms) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	switch t.Type {
	case CouponPercentage:
		discount := subtotal.Mul(t.Value).Div(decimal.NewFromInt(100))
		if t.MaxDiscount != nil && discount.GreaterThan(*t.MaxDiscount) {
			return *t.MaxDiscount
		}
		return discount
	case CouponFixed:
		return t.Value
	}
	return decimal.Zero
}
