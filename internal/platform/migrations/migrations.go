// Package migrations applies the schema for all bounded contexts in one
// place instead of adapter-level automigrate.
package migrations

import (
	"gorm.io/gorm"

	inventorypostgres "github.com/dominusaudio/commerce-api/internal/domains/inventory/adapters/persistence/postgres"
	couponadapter "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/coupon"
	orderspostgres "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/persistence/postgres"
)

// Run migrates every table the API reads or writes. The coupons and
// addresses tables are owned by the storefront; migrating them here keeps
// local and test databases self-contained.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&inventorypostgres.InventoryRecord{},
		&inventorypostgres.StockMovementRecord{},
		&orderspostgres.OrderRecord{},
		&orderspostgres.OrderItemRecord{},
		&orderspostgres.PaymentRecord{},
		&orderspostgres.StatusChangeRecord{},
		&couponadapter.CouponRecord{},
		&orderspostgres.AddressRecord{},
	)
}
