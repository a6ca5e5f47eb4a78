package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountForPercentage(t *testing.T) {
	maxDiscount := decimal.NewFromInt(20)
	terms := DiscountTerms{
		Code:        "DESCONTO10",
		Type:        CouponPercentage,
		Value:       decimal.NewFromInt(10),
		MaxDiscount: &maxDiscount,
	}

	// 10% of 300 is 30, capped at 20
	discount := terms.DiscountFor(decimal.NewFromInt(300))
	assert.True(t, discount.Equal(decimal.NewFromInt(20)), "got %s", discount)

	// under the cap
	discount = terms.DiscountFor(decimal.NewFromInt(100))
	assert.True(t, discount.Equal(decimal.NewFromInt(10)), "got %s", discount)
}

func TestDiscountForPercentageUncapped(t *testing.T) {
	terms := DiscountTerms{Type: CouponPercentage, Value: decimal.NewFromInt(10)}
	discount := terms.DiscountFor(decimal.NewFromInt(300))
	assert.True(t, discount.Equal(decimal.NewFromInt(30)), "got %s", discount)
}

func TestDiscountForFixed(t *testing.T) {
	terms := DiscountTerms{Type: CouponFixed, Value: decimal.NewFromInt(15)}
	discount := terms.DiscountFor(decimal.NewFromInt(50))
	assert.True(t, discount.Equal(decimal.NewFromInt(15)), "got %s", discount)
}
