package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

type inventoryRepository struct {
	*Store
}

// keyScope matches the key exactly: a nil location or lot only matches NULL columns
func keyScope(key entities.InventoryKey) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("item_id = ? AND warehouse_id = ?", key.ItemID, key.WarehouseID)
		if key.LocationID == nil {
			db = db.Where("location_id IS NULL")
		} else {
			db = db.Where("location_id = ?", *key.LocationID)
		}
		if key.LotNumber == nil {
			db = db.Where("lot_number IS NULL")
		} else {
			db = db.Where("lot_number = ?", *key.LotNumber)
		}
		return db
	}
}

func (r *inventoryRepository) FindRecord(ctx context.Context, key entities.InventoryKey) (*entities.InventoryRecord, error) {
	var record entities.InventoryRecord
	err := r.locking(ctx).Scopes(keyScope(key)).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// creditOnConflict adds the inserted quantities to a row another transaction created for the same key
func creditOnConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "warehouse_id"}, {Name: "location_id"}, {Name: "lot_number"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity_on_hand":   gorm.Expr("inventory_records.quantity_on_hand + EXCLUDED.quantity_on_hand"),
			"quantity_available": gorm.Expr("inventory_records.quantity_available + EXCLUDED.quantity_on_hand"),
			"updated_at":         gorm.Expr("EXCLUDED.updated_at"),
		}),
	}
}

// SaveRecord updates a known record. A new record is upserted: FOR UPDATE locks nothing while the key
// has no row, so two credits to the same key may both get here, and the loser adds its quantity to
// the winner's row. The record is then reloaded with the stored quantities.
func (r *inventoryRepository) SaveRecord(ctx context.Context, record *entities.InventoryRecord) error {
	const op = "save inventory record"
	record.Recompute()
	if record.ID != 0 {
		return translateLedger(r.conn(ctx).Save(record).Error, op)
	}

	if err := r.conn(ctx).Clauses(creditOnConflict()).Create(record).Error; err != nil {
		return translateLedger(err, op)
	}
	return translateLedger(r.conn(ctx).Scopes(keyScope(record.Key())).Take(record).Error, op)
}

func (r *inventoryRepository) AppendMovement(ctx context.Context, movement *entities.InventoryMovement) error {
	return translateLedger(r.conn(ctx).Create(movement).Error, "append inventory movement")
}

func (r *inventoryRepository) ListMovements(ctx context.Context, itemID int64) ([]*entities.InventoryMovement, error) {
	var movements []*entities.InventoryMovement
	err := r.conn(ctx).Where("item_id = ?", itemID).Order("id").Find(&movements).Error
	return movements, err
}
