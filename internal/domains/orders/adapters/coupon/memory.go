package coupon

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

// MemoryEvaluator serves seeded discount terms for local runs and tests.
type MemoryEvaluator struct {
	mu    sync.RWMutex
	terms map[string]domain.DiscountTerms
}

func NewMemoryEvaluator() *MemoryEvaluator {
	return &MemoryEvaluator{terms: map[string]domain.DiscountTerms{}}
}

var _ ports.CouponEvaluator = (*MemoryEvaluator)(nil)

func (e *MemoryEvaluator) Seed(terms domain.DiscountTerms) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.terms[strings.ToUpper(terms.Code)] = terms
}

func (e *MemoryEvaluator) Validate(_ context.Context, code string, _ decimal.Decimal) (*domain.DiscountTerms, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	terms, ok := e.terms[strings.ToUpper(code)]
	if !ok {
		return nil, errors.New("Cupom não encontrado")
	}
	return &terms, nil
}
