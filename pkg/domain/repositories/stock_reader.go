package repositories

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockFilter selects ledger records for the stock report. Zero ids mean "any".
type StockFilter struct {
	DivisionID  int64
	WarehouseID int64
	ItemID      int64
	Page        int
	Size        int
}

// Normalize applies paging defaults
func (f StockFilter) Normalize() StockFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 {
		f.Size = 50
	}
	if f.Size > 500 {
		f.Size = 500
	}
	return f
}

// Offset returns the row offset of the page
func (f StockFilter) Offset() int {
	return (f.Page - 1) * f.Size
}

type StockRow struct {
	RecordID          int64           `json:"record_id" db:"record_id"`
	ItemID            int64           `json:"item_id" db:"item_id"`
	ItemCode          string          `json:"item_code" db:"item_code"`
	ItemName          string          `json:"item_name" db:"item_name"`
	DivisionID        int64           `json:"division_id" db:"division_id"`
	WarehouseID       int64           `json:"warehouse_id" db:"warehouse_id"`
	WarehouseCode     string          `json:"warehouse_code" db:"warehouse_code"`
	LocationID        *int64          `json:"location_id,omitempty" db:"location_id"`
	LotNumber         *string         `json:"lot_number,omitempty" db:"lot_number"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand" db:"quantity_on_hand"`
	QuantityAllocated decimal.Decimal `json:"quantity_allocated" db:"quantity_allocated"`
	QuantityAvailable decimal.Decimal `json:"quantity_available" db:"quantity_available"`
}

type StockPage struct {
	Rows        []StockRow      `json:"rows"`
	Total       int64           `json:"total"`
	TotalOnHand decimal.Decimal `json:"total_on_hand"`
	Page        int             `json:"page"`
	Size        int             `json:"size"`
}

// StockReader serves the read-only stock report
type StockReader interface {
	StockLevels(ctx context.Context, filter StockFilter) (*StockPage, error)
}
