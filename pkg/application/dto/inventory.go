package dto

import "github.com/shopspring/decimal"

// AdjustmentRequest is a signed manual correction of one ledger key
type AdjustmentRequest struct {
	ItemID        int64           `json:"item_id" binding:"required"`
	WarehouseID   int64           `json:"warehouse_id" binding:"required"`
	LocationID    *int64          `json:"location_id"`
	LotNumber     *string         `json:"lot_number"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   int64           `json:"reference_id"`
	Note          string          `json:"note"`
}

// ReceiptMessage is the payload of the goods-receipt topic
type ReceiptMessage struct {
	ItemID      int64           `json:"item_id"`
	WarehouseID int64           `json:"warehouse_id"`
	LocationID  *int64          `json:"location_id"`
	LotNumber   *string         `json:"lot_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReferenceID int64           `json:"reference_id"`
}
