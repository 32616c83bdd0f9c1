package events

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	ManufacturingOrderCreatedEvent = "manufacturing_order.created"
	ManufacturingOrderStatusEvent  = "manufacturing_order.status_changed"
	MaterialsIssuedEvent           = "manufacturing_order.materials_issued"
	MaterialsReturnedEvent         = "manufacturing_order.materials_returned"

	TransferSettledEvent   = "transfer.settled"
	TransferCancelledEvent = "transfer.cancelled"

	InventoryAdjustedEvent = "inventory.adjusted"

	PricingCalculatedEvent = "pricing.calculated"

	BOMActivatedEvent = "bom.activated"
)

// Stream ids group events per aggregate
func OrderStream(id int64) string    { return fmt.Sprintf("manufacturing_order-%d", id) }
func TransferStream(id int64) string { return fmt.Sprintf("transfer-%d", id) }
func ItemStream(id int64) string     { return fmt.Sprintf("item-%d", id) }
func BOMStream(id int64) string      { return fmt.Sprintf("bom-%d", id) }

type ManufacturingOrderCreated struct {
	OrderID       int64           `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	ItemID        int64           `json:"item_id"`
	BomID         *int64          `json:"bom_id,omitempty"`
	DivisionID    int64           `json:"division_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	MaterialCount int             `json:"material_count"`
}

type ManufacturingOrderStatusChanged struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type MaterialsIssued struct {
	OrderID int64          `json:"order_id"`
	Lines   []MaterialLine `json:"lines"`
}

type MaterialsReturned struct {
	OrderID    int64 `json:"order_id"`
	MaterialID int64 `json:"material_id"`
	MaterialLine
}

type MaterialLine struct {
	ItemID   int64           `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

type TransferSettled struct {
	TransferID     int64          `json:"transfer_id"`
	FromDivisionID int64          `json:"from_division_id"`
	ToDivisionID   int64          `json:"to_division_id"`
	Lines          []MaterialLine `json:"lines"`
}

type TransferCancelled struct {
	TransferID int64 `json:"transfer_id"`
}

type InventoryAdjusted struct {
	ItemID         int64           `json:"item_id"`
	WarehouseID    int64           `json:"warehouse_id"`
	LocationID     *int64          `json:"location_id,omitempty"`
	LotNumber      *string         `json:"lot_number,omitempty"`
	Delta          decimal.Decimal `json:"delta"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    int64           `json:"reference_id"`
}

type PricingCalculated struct {
	ItemID            int64           `json:"item_id"`
	PricingScenarioID int64           `json:"pricing_scenario_id"`
	CurrencyID        int64           `json:"currency_id"`
	FinalPrice        decimal.Decimal `json:"final_price"`
}

type BOMActivated struct {
	BomID       int64   `json:"bom_id"`
	ItemID      int64   `json:"item_id"`
	Revision    int     `json:"revision"`
	ObsoletedID []int64 `json:"obsoleted_ids,omitempty"`
}
