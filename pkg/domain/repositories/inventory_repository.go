package repositories

import (
	"context"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// InventoryRepository provides access to ledger records.
// FindRecord returns (nil, nil) when no record matches the key exactly; inside a transaction the
// returned row is locked until commit. SaveRecord of a record without an id adds its quantities to
// any row a concurrent transaction created for the same key and leaves the stored values in record.
type InventoryRepository interface {
	FindRecord(ctx context.Context, key entities.InventoryKey) (*entities.InventoryRecord, error)
	SaveRecord(ctx context.Context, record *entities.InventoryRecord) error
	AppendMovement(ctx context.Context, movement *entities.InventoryMovement) error
	ListMovements(ctx context.Context, itemID int64) ([]*entities.InventoryMovement, error)
}
