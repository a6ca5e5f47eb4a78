package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

// AddressRecord mirrors the storefront's addresses table. Read-only here;
// address management belongs to the users side of the store.
type AddressRecord struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	UserID     string `gorm:"type:uuid;index;not null"`
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	ZipCode    string
}

func (AddressRecord) TableName() string { return "addresses" }

// AddressReader implements ports.AddressReader on postgres.
type AddressReader struct {
	db *gorm.DB
}

func NewAddressReader(db *gorm.DB) *AddressReader {
	return &AddressReader{db: db}
}

var _ ports.AddressReader = (*AddressReader)(nil)

// GetOwned scopes the lookup by owner so a foreign address is
// indistinguishable from a missing one.
func (r *AddressReader) GetOwned(ctx context.Context, addressID, userID string) (*ports.Address, error) {
	var rec AddressRecord
	err := r.db.WithContext(ctx).
		First(&rec, "id = ? AND user_id = ?", addressID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrAddressNotFound
		}
		return nil, err
	}
	return &ports.Address{
		ID:         rec.ID,
		UserID:     rec.UserID,
		Street:     rec.Street,
		Number:     rec.Number,
		Complement: rec.Complement,
		District:   rec.District,
		City:       rec.City,
		State:      rec.State,
		ZipCode:    rec.ZipCode,
	}, nil
}
