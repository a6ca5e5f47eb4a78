package application

import (
	"errors"
	"fmt"

	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
)

// ErrInvalidInput signals the request violated a ledger invariant.
var ErrInvalidInput = errors.New("invalid stock adjustment")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidAdjustmentType) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
