package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle state of an inter-division transfer
type TransferStatus string

const (
	TransferDraft      TransferStatus = "draft"
	TransferInProgress TransferStatus = "in_progress"
	TransferCompleted  TransferStatus = "completed"
	TransferCancelled  TransferStatus = "cancelled"
)

// TransferItemStatus tracks settlement of a single transfer line
type TransferItemStatus string

const (
	TransferItemPending     TransferItemStatus = "pending"
	TransferItemTransferred TransferItemStatus = "transferred"
)

// InterDivisionTransfer moves stock between warehouses of two different divisions
type InterDivisionTransfer struct {
	ID             int64          `json:"id" gorm:"primaryKey"`
	TransferNumber string         `json:"transfer_number" gorm:"size:32;uniqueIndex;not null"`
	FromDivisionID int64          `json:"from_division_id" gorm:"not null;index"`
	ToDivisionID   int64          `json:"to_division_id" gorm:"not null;index"`
	Status         TransferStatus `json:"status" gorm:"size:16;not null;default:draft"`
	Notes          string         `json:"notes,omitempty" gorm:"type:text"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Items []InterDivisionTransferItem `json:"items" gorm:"foreignKey:TransferID"`
}

func (InterDivisionTransfer) TableName() string {
	return "inter_division_transfers"
}

// Cancellable reports whether the transfer may still be cancelled
func (t *InterDivisionTransfer) Cancellable() bool {
	return t.Status == TransferDraft || t.Status == TransferInProgress
}

// InterDivisionTransferItem is one line of a transfer. The lot applies to both source and destination.
type InterDivisionTransferItem struct {
	ID              int64              `json:"id" gorm:"primaryKey"`
	TransferID      int64              `json:"transfer_id" gorm:"not null;index"`
	ItemID          int64              `json:"item_id" gorm:"not null"`
	Quantity        decimal.Decimal    `json:"quantity" gorm:"type:numeric(18,4);not null"`
	FromWarehouseID int64              `json:"from_warehouse_id" gorm:"not null"`
	FromLocationID  *int64             `json:"from_location_id,omitempty"`
	ToWarehouseID   int64              `json:"to_warehouse_id" gorm:"not null"`
	ToLocationID    *int64             `json:"to_location_id,omitempty"`
	LotNumber       *string            `json:"lot_number,omitempty" gorm:"size:64"`
	Status          TransferItemStatus `json:"status" gorm:"size:16;not null;default:pending"`
}

func (InterDivisionTransferItem) TableName() string {
	return "inter_division_transfer_items"
}

// SourceKey is the ledger key debited when the line settles
func (i *InterDivisionTransferItem) SourceKey() InventoryKey {
	return InventoryKey{
		ItemID:      i.ItemID,
		WarehouseID: i.FromWarehouseID,
		LocationID:  copyInt64Ptr(i.FromLocationID),
		LotNumber:   copyStringPtr(i.LotNumber),
	}
}

// DestinationKey is the ledger key credited when the line settles
func (i *InterDivisionTransferItem) DestinationKey() InventoryKey {
	return InventoryKey{
		ItemID:      i.ItemID,
		WarehouseID: i.ToWarehouseID,
		LocationID:  copyInt64Ptr(i.ToLocationID),
		LotNumber:   copyStringPtr(i.LotNumber),
	}
}
