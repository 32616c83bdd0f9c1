package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryKey identifies a ledger record. A nil location or lot means "unscoped" and matches only
// records that are unscoped as well.
type InventoryKey struct {
	ItemID      int64
	WarehouseID int64
	LocationID  *int64
	LotNumber   *string
}

// String renders the key for logs and error messages
func (k InventoryKey) String() string {
	loc := "-"
	if k.LocationID != nil {
		loc = fmt.Sprintf("%d", *k.LocationID)
	}
	lot := "-"
	if k.LotNumber != nil {
		lot = *k.LotNumber
	}
	return fmt.Sprintf("item=%d warehouse=%d location=%s lot=%s", k.ItemID, k.WarehouseID, loc, lot)
}

// Matches reports whether the record belongs to exactly this key
func (k InventoryKey) Matches(r *InventoryRecord) bool {
	return r.ItemID == k.ItemID &&
		r.WarehouseID == k.WarehouseID &&
		equalInt64Ptr(k.LocationID, r.LocationID) &&
		equalStringPtr(k.LotNumber, r.LotNumber)
}

// InventoryRecord holds the quantities of one (item, warehouse, location, lot) key.
// QuantityAvailable is always QuantityOnHand minus QuantityAllocated.
type InventoryRecord struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	ItemID            int64           `json:"item_id" gorm:"not null;index"`
	WarehouseID       int64           `json:"warehouse_id" gorm:"not null;index"`
	LocationID        *int64          `json:"location_id,omitempty"`
	LotNumber         *string         `json:"lot_number,omitempty" gorm:"size:64"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand" gorm:"type:numeric(18,4);not null;default:0"`
	QuantityAllocated decimal.Decimal `json:"quantity_allocated" gorm:"type:numeric(18,4);not null;default:0"`
	QuantityAvailable decimal.Decimal `json:"quantity_available" gorm:"type:numeric(18,4);not null;default:0"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// NewInventoryRecord creates an empty record for the key
func NewInventoryRecord(key InventoryKey) *InventoryRecord {
	return &InventoryRecord{
		ItemID:            key.ItemID,
		WarehouseID:       key.WarehouseID,
		LocationID:        copyInt64Ptr(key.LocationID),
		LotNumber:         copyStringPtr(key.LotNumber),
		QuantityOnHand:    decimal.Zero,
		QuantityAllocated: decimal.Zero,
		QuantityAvailable: decimal.Zero,
	}
}

// Key returns the ledger key of the record
func (r *InventoryRecord) Key() InventoryKey {
	return InventoryKey{
		ItemID:      r.ItemID,
		WarehouseID: r.WarehouseID,
		LocationID:  copyInt64Ptr(r.LocationID),
		LotNumber:   copyStringPtr(r.LotNumber),
	}
}

// Recompute refreshes the derived available quantity
func (r *InventoryRecord) Recompute() {
	r.QuantityAvailable = r.QuantityOnHand.Sub(r.QuantityAllocated)
}

// CanApply reports whether adding delta keeps the on-hand quantity non-negative
func (r *InventoryRecord) CanApply(delta decimal.Decimal) bool {
	return !r.QuantityOnHand.Add(delta).IsNegative()
}

// Apply adds delta to the on-hand quantity and recomputes availability
func (r *InventoryRecord) Apply(delta decimal.Decimal) {
	r.QuantityOnHand = r.QuantityOnHand.Add(delta)
	r.Recompute()
}

// MovementReference names the business document behind a ledger delta
type MovementReference struct {
	Type string
	ID   int64
	Note string
}

// Movement reference types
const (
	RefAdjustment         = "adjustment"
	RefTransfer           = "inter_division_transfer"
	RefManufacturingOrder = "manufacturing_order"
	RefReceipt            = "receipt"
)

// InventoryMovement is the journal row written for every ledger delta
type InventoryMovement struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	RecordID       int64           `json:"record_id" gorm:"not null;index"`
	ItemID         int64           `json:"item_id" gorm:"not null;index"`
	WarehouseID    int64           `json:"warehouse_id" gorm:"not null"`
	LocationID     *int64          `json:"location_id,omitempty"`
	LotNumber      *string         `json:"lot_number,omitempty" gorm:"size:64"`
	Delta          decimal.Decimal `json:"delta" gorm:"type:numeric(18,4);not null"`
	QuantityBefore decimal.Decimal `json:"quantity_before" gorm:"type:numeric(18,4);not null"`
	QuantityAfter  decimal.Decimal `json:"quantity_after" gorm:"type:numeric(18,4);not null"`
	ReferenceType  string          `json:"reference_type" gorm:"size:32;not null"`
	ReferenceID    int64           `json:"reference_id"`
	Note           string          `json:"note" gorm:"type:text"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyInt64Ptr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
