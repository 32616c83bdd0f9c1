package dto

import "github.com/shopspring/decimal"

// MaterialRequirement is one exploded BOM line scaled to an order quantity
type MaterialRequirement struct {
	ComponentItemID   int64           `json:"component_item_id"`
	PlannedQuantity   decimal.Decimal `json:"planned_quantity"`
	UomID             int64           `json:"uom_id"`
	SourceComponentID int64           `json:"source_component_id"`
	LevelNumber       int             `json:"level_number"`
	Position          int             `json:"position"`
}

// ExplosionResult is the preview of a BOM explosion
type ExplosionResult struct {
	BomID        int64                 `json:"bom_id"`
	ItemID       int64                 `json:"item_id"`
	Quantity     decimal.Decimal       `json:"quantity"`
	Requirements []MaterialRequirement `json:"requirements"`
}
