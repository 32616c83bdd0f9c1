package dto

import "github.com/shopspring/decimal"

type AddComponentRequest struct {
	ComponentItemID   int64           `json:"component_item_id" binding:"required"`
	Quantity          decimal.Decimal `json:"quantity"`
	UomID             int64           `json:"uom_id" binding:"required"`
	ParentComponentID *int64          `json:"parent_component_id"`
	Position          *int            `json:"position"`
}
