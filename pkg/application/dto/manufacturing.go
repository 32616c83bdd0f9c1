package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest creates a manufacturing order and explodes its BOM into materials.
// Materials are drawn from WarehouseID/LocationID.
type CreateOrderRequest struct {
	ItemID       int64           `json:"item_id" binding:"required"`
	BomID        *int64          `json:"bom_id"`
	DivisionID   int64           `json:"division_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	WarehouseID  int64           `json:"warehouse_id" binding:"required"`
	LocationID   *int64          `json:"location_id"`
	PlannedStart *time.Time      `json:"planned_start"`
	PlannedEnd   *time.Time      `json:"planned_end"`
	Priority     int             `json:"priority"`
	Notes        string          `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ReturnMaterialRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}
