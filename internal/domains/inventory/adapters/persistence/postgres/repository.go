package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/ports"
	platformpostgres "github.com/dominusaudio/commerce-api/internal/platform/postgres"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists the stock ledger in PostgreSQL using GORM. It joins any
// transaction carried on the context.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed ledger repository. Caller manages
// the DB lifecycle and runs migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InventoryRecord maps an inventory row. One row per product.
type InventoryRecord struct {
	ID          string    `gorm:"primaryKey;column:id;size:36"`
	ProductID   string    `gorm:"column:product_id;size:36;uniqueIndex"`
	Quantity    int       `gorm:"column:quantity;not null"`
	ReservedQty int       `gorm:"column:reserved_qty;not null"`
	MinQuantity int       `gorm:"column:min_quantity;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (InventoryRecord) TableName() string { return "inventory" }

// StockMovementRecord maps one append-only ledger entry.
type StockMovementRecord struct {
	ID          string    `gorm:"primaryKey;column:id;size:36"`
	InventoryID string    `gorm:"column:inventory_id;size:36;index"`
	Type        string    `gorm:"column:type;type:varchar(16)"`
	Quantity    int       `gorm:"column:quantity;not null"`
	PreviousQty int       `gorm:"column:previous_qty;not null"`
	NewQty      int       `gorm:"column:new_qty;not null"`
	Reason      string    `gorm:"column:reason"`
	Reference   string    `gorm:"column:reference;index"`
	CreatedBy   string    `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (StockMovementRecord) TableName() string { return "stock_movements" }

func (r *Repository) GetByProductID(ctx context.Context, productID string) (*domain.Inventory, error) {
	return r.getByProductID(ctx, productID, false)
}

func (r *Repository) GetByProductIDForUpdate(ctx context.Context, productID string) (*domain.Inventory, error) {
	return r.getByProductID(ctx, productID, true)
}

func (r *Repository) getByProductID(ctx context.Context, productID string, lock bool) (*domain.Inventory, error) {
	db := platformpostgres.FromContext(ctx, r.db).WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record InventoryRecord
	if err := db.First(&record, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Save updates the mutable quantity fields of an existing row.
func (r *Repository) Save(ctx context.Context, inv *domain.Inventory) error {
	db := platformpostgres.FromContext(ctx, r.db).WithContext(ctx)
	result := db.Model(&InventoryRecord{}).
		Where("id = ?", inv.ID).
		Updates(map[string]any{
			"quantity":     inv.Quantity,
			"reserved_qty": inv.ReservedQty,
			"min_quantity": inv.MinQuantity,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// AppendMovement inserts one audit row. Movements are never updated or deleted.
func (r *Repository) AppendMovement(ctx context.Context, mv *domain.StockMovement) error {
	db := platformpostgres.FromContext(ctx, r.db).WithContext(ctx)
	record := toMovementRecord(mv)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := db.Create(&record).Error; err != nil {
		return err
	}
	mv.ID = record.ID
	mv.CreatedAt = record.CreatedAt
	return nil
}

func (r *Repository) List(ctx context.Context, params pagination.Params) ([]*domain.Inventory, int64, error) {
	db := platformpostgres.FromContext(ctx, r.db).WithContext(ctx)
	var total int64
	if err := db.Model(&InventoryRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []InventoryRecord
	if err := db.Order("product_id asc").
		Offset(params.Offset()).Limit(params.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return toDomainList(records), total, nil
}

func (r *Repository) ListLowStock(ctx context.Context, params pagination.Params) ([]*domain.Inventory, int64, error) {
	db := platformpostgres.FromContext(ctx, r.db).WithContext(ctx)
	lowStock := db.Model(&InventoryRecord{}).Where("quantity <= min_quantity")
	var total int64
	if err := lowStock.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []InventoryRecord
	if err := lowStock.Order("quantity asc").
		Offset(params.Offset()).Limit(params.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return toDomainList(records), total, nil
}

func (r *Repository) ListMovements(ctx context.Context, inventoryID string, params pagination.Params) ([]*domain.StockMovement, int64, error) {
	db := platformpostgres.FromContext(ctx, r.db).WithContext(ctx)
	scoped := db.Model(&StockMovementRecord{}).Where("inventory_id = ?", inventoryID)
	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []StockMovementRecord
	if err := scoped.Order("created_at desc").
		Offset(params.Offset()).Limit(params.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	movements := make([]*domain.StockMovement, 0, len(records))
	for i := range records {
		movements = append(movements, records[i].toDomain())
	}
	return movements, total, nil
}

func (r *Repository) RecentMovements(ctx context.Context, inventoryID string, limit int) ([]*domain.StockMovement, error) {
	movements, _, err := r.ListMovements(ctx, inventoryID, pagination.Params{Page: 1, Limit: limit})
	return movements, err
}

func toDomainList(records []InventoryRecord) []*domain.Inventory {
	items := make([]*domain.Inventory, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items
}

func (r InventoryRecord) toDomain() *domain.Inventory {
	return &domain.Inventory{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		ReservedQty: r.ReservedQty,
		MinQuantity: r.MinQuantity,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toMovementRecord(mv *domain.StockMovement) StockMovementRecord {
	return StockMovementRecord{
		ID:          mv.ID,
		InventoryID: mv.InventoryID,
		Type:        string(mv.Type),
		Quantity:    mv.Quantity,
		PreviousQty: mv.PreviousQty,
		NewQty:      mv.NewQty,
		Reason:      mv.Reason,
		Reference:   mv.Reference,
		CreatedBy:   mv.CreatedBy,
	}
}

func (r StockMovementRecord) toDomain() *domain.StockMovement {
	return &domain.StockMovement{
		ID:          r.ID,
		InventoryID: r.InventoryID,
		Type:        domain.MovementType(r.Type),
		Quantity:    r.Quantity,
		PreviousQty: r.PreviousQty,
		NewQty:      r.NewQty,
		Reason:      r.Reason,
		Reference:   r.Reference,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}
