package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// Ledger applies signed quantity deltas to inventory records
type Ledger struct {
	tx        repositories.TxManager
	store     repositories.Store
	publisher events.Publisher
	logger    *zap.Logger
}

// NewLedger creates a ledger. store serves the reads done outside of a transaction.
func NewLedger(store repositories.Store, tx repositories.TxManager, publisher events.Publisher, logger *zap.Logger) *Ledger {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Ledger{
		tx:        tx,
		store:     store,
		publisher: publisher,
		logger:    logging.OrNop(logger),
	}
}

// ApplyDelta adds delta to the on-hand quantity of the record matching key exactly.
// A missing record is created for a positive delta; any delta that would leave on-hand below zero
// fails with InsufficientStock. Every call writes one record and one movement row.
// It must run on the transactional store of the caller's unit of work.
func (l *Ledger) ApplyDelta(
	ctx context.Context,
	store repositories.Store,
	key entities.InventoryKey,
	delta decimal.Decimal,
	ref entities.MovementReference,
) (*entities.InventoryRecord, error) {
	const op = "ledger.apply"

	if delta.IsZero() {
		return nil, entities.Validationf(op, "quantity delta cannot be zero")
	}
	if key.ItemID <= 0 || key.WarehouseID <= 0 {
		return nil, entities.Validationf(op, "item and warehouse are required")
	}

	record, err := store.Inventory().FindRecord(ctx, key)
	if err != nil {
		return nil, err
	}

	if record == nil {
		if delta.IsNegative() {
			return nil, entities.InsufficientStockf(op, "insufficient stock at %s: none on hand, requested %s",
				key, delta.Neg().String())
		}
		record = entities.NewInventoryRecord(key)
	}

	if !record.CanApply(delta) {
		return nil, entities.InsufficientStockf(op, "insufficient stock at %s: on hand %s, requested %s",
			key, record.QuantityOnHand.String(), delta.Neg().String())
	}

	record.Apply(delta)

	// a new record may land on a row a concurrent credit created, so the balance comes back from the store
	if err := store.Inventory().SaveRecord(ctx, record); err != nil {
		return nil, err
	}
	before := record.QuantityOnHand.Sub(delta)

	movement := &entities.InventoryMovement{
		RecordID:       record.ID,
		ItemID:         record.ItemID,
		WarehouseID:    record.WarehouseID,
		LocationID:     key.LocationID,
		LotNumber:      key.LotNumber,
		Delta:          delta,
		QuantityBefore: before,
		QuantityAfter:  record.QuantityOnHand,
		ReferenceType:  ref.Type,
		ReferenceID:    ref.ID,
		Note:           ref.Note,
	}
	if err := store.Inventory().AppendMovement(ctx, movement); err != nil {
		return nil, err
	}

	l.logger.Debug("ledger delta applied",
		zap.Stringer("key", key),
		zap.String("delta", delta.String()),
		zap.String("on_hand", record.QuantityOnHand.String()),
		zap.String("reference_type", ref.Type),
		zap.Int64("reference_id", ref.ID),
	)

	return record, nil
}

// Adjust applies a single delta in its own transaction
func (l *Ledger) Adjust(ctx context.Context, req dto.AdjustmentRequest) (*entities.InventoryRecord, error) {
	const op = "ledger.adjust"

	if req.Quantity.IsZero() {
		return nil, entities.Validationf(op, "quantity cannot be zero")
	}
	refType := req.ReferenceType
	if refType == "" {
		refType = entities.RefAdjustment
	}

	key := entities.InventoryKey{
		ItemID:      req.ItemID,
		WarehouseID: req.WarehouseID,
		LocationID:  req.LocationID,
		LotNumber:   req.LotNumber,
	}

	var record *entities.InventoryRecord
	err := l.tx.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		if _, err := tx.Items().GetItem(ctx, req.ItemID); err != nil {
			return err
		}
		if _, err := ValidateSite(ctx, tx.Sites(), req.WarehouseID, req.LocationID); err != nil {
			return err
		}
		var err error
		record, err = l.ApplyDelta(ctx, tx, key, req.Quantity, entities.MovementReference{
			Type: refType,
			ID:   req.ReferenceID,
			Note: req.Note,
		})
		return err
	})
	if err != nil {
		l.logger.Info("inventory adjustment rejected", zap.Stringer("key", key), zap.Error(err))
		return nil, err
	}

	events.Emit(ctx, l.publisher, l.logger, events.NewEvent(events.InventoryAdjustedEvent, events.ItemStream(req.ItemID), events.InventoryAdjusted{
		ItemID:         record.ItemID,
		WarehouseID:    record.WarehouseID,
		LocationID:     record.LocationID,
		LotNumber:      record.LotNumber,
		Delta:          req.Quantity,
		QuantityOnHand: record.QuantityOnHand,
		ReferenceType:  refType,
		ReferenceID:    req.ReferenceID,
	}))

	return record, nil
}

// Movements lists the journal of an item
func (l *Ledger) Movements(ctx context.Context, itemID int64) ([]*entities.InventoryMovement, error) {
	return l.store.Inventory().ListMovements(ctx, itemID)
}

// ValidateSite checks that the warehouse exists and that the location, when given, belongs to it
func ValidateSite(ctx context.Context, sites repositories.SiteRepository, warehouseID int64, locationID *int64) (*entities.Warehouse, error) {
	const op = "ledger.site"

	if warehouseID <= 0 {
		return nil, entities.Validationf(op, "warehouse is required")
	}
	warehouse, err := sites.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if locationID == nil {
		return warehouse, nil
	}
	location, err := sites.GetLocation(ctx, *locationID)
	if err != nil {
		return nil, err
	}
	if location.WarehouseID != warehouse.ID {
		return nil, entities.Validationf(op, "location %d does not belong to warehouse %d", location.ID, warehouse.ID)
	}
	return warehouse, nil
}
