package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateTransferRequest struct {
	FromDivisionID int64                 `json:"from_division_id" binding:"required"`
	ToDivisionID   int64                 `json:"to_division_id" binding:"required"`
	Notes          string                `json:"notes"`
	Items          []TransferLineRequest `json:"items"`
}

type TransferLineRequest struct {
	ItemID          int64           `json:"item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	FromWarehouseID int64           `json:"from_warehouse_id"`
	FromLocationID  *int64          `json:"from_location_id"`
	ToWarehouseID   int64           `json:"to_warehouse_id"`
	ToLocationID    *int64          `json:"to_location_id"`
	LotNumber       *string         `json:"lot_number"`
}

// SettlementResult reports the ledger state after a transfer was processed
type SettlementResult struct {
	TransferID  int64         `json:"transfer_id"`
	Status      string        `json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Lines       []SettledLine `json:"lines"`
}

type SettledLine struct {
	TransferItemID    int64           `json:"transfer_item_id"`
	ItemID            int64           `json:"item_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	SourceOnHand      decimal.Decimal `json:"source_on_hand"`
	DestinationOnHand decimal.Decimal `json:"destination_on_hand"`
}
