package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a manufacturing order
type OrderStatus string

const (
	OrderDraft      OrderStatus = "draft"
	OrderPlanned    OrderStatus = "planned"
	OrderInProgress OrderStatus = "in_progress"
	OrderOnHold     OrderStatus = "on_hold"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderDraft:      {OrderPlanned, OrderInProgress, OrderCancelled},
	OrderPlanned:    {OrderInProgress, OrderOnHold, OrderCancelled},
	OrderInProgress: {OrderOnHold, OrderCompleted, OrderCancelled},
	OrderOnHold:     {OrderInProgress, OrderCancelled},
	OrderCompleted:  {},
	OrderCancelled:  {},
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// OperationStatus tracks a routing step of an order
type OperationStatus string

const (
	OperationPending    OperationStatus = "pending"
	OperationInProgress OperationStatus = "in_progress"
	OperationCompleted  OperationStatus = "completed"
)

// GenericOperationName is used when an order has no BOM to derive its routing from
const GenericOperationName = "Production"

// ManufacturingOrder is a request to make Quantity units of ItemID in a division
type ManufacturingOrder struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	OrderNumber  string          `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	ItemID       int64           `json:"item_id" gorm:"not null;index"`
	BomID        *int64          `json:"bom_id,omitempty" gorm:"index"`
	DivisionID   int64           `json:"division_id" gorm:"not null;index"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:numeric(18,4);not null"`
	Status       OrderStatus     `json:"status" gorm:"size:16;not null;default:draft"`
	PlannedStart *time.Time      `json:"planned_start,omitempty"`
	PlannedEnd   *time.Time      `json:"planned_end,omitempty"`
	Priority     int             `json:"priority" gorm:"not null;default:0"`
	Notes        string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Materials  []ManufacturingOrderMaterial  `json:"materials" gorm:"foreignKey:OrderID"`
	Operations []ManufacturingOrderOperation `json:"operations" gorm:"foreignKey:OrderID"`
}

func (ManufacturingOrder) TableName() string {
	return "manufacturing_orders"
}

// NewManufacturingOrder creates a validated draft order without materials
func NewManufacturingOrder(orderNumber string, itemID, divisionID int64, quantity decimal.Decimal, plannedStart, plannedEnd *time.Time) (*ManufacturingOrder, error) {
	if orderNumber == "" {
		return nil, fmt.Errorf("order number cannot be empty")
	}
	if itemID <= 0 {
		return nil, fmt.Errorf("item id is required")
	}
	if divisionID <= 0 {
		return nil, fmt.Errorf("division id is required")
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive, got %s", quantity.String())
	}
	if plannedStart != nil && plannedEnd != nil && plannedEnd.Before(*plannedStart) {
		return nil, fmt.Errorf("planned end %v cannot be before planned start %v", *plannedEnd, *plannedStart)
	}

	return &ManufacturingOrder{
		OrderNumber:  orderNumber,
		ItemID:       itemID,
		DivisionID:   divisionID,
		Quantity:     quantity,
		Status:       OrderDraft,
		PlannedStart: plannedStart,
		PlannedEnd:   plannedEnd,
	}, nil
}

// CanTransitionTo reports whether the order may move to the target status
func (o *ManufacturingOrder) CanTransitionTo(target OrderStatus) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to target or returns an InvalidTransition error
func (o *ManufacturingOrder) TransitionTo(target OrderStatus) error {
	if !target.Valid() {
		return Validationf("order.transition", "unknown order status %q", target)
	}
	if !o.CanTransitionTo(target) {
		return InvalidTransitionf("order.transition", "order %s cannot move from %s to %s", o.OrderNumber, o.Status, target)
	}
	o.Status = target
	return nil
}

// Material returns the order material with the given id
func (o *ManufacturingOrder) Material(id int64) (*ManufacturingOrderMaterial, bool) {
	for i := range o.Materials {
		if o.Materials[i].ID == id {
			return &o.Materials[i], true
		}
	}
	return nil, false
}

// ManufacturingOrderMaterial is one exploded BOM line of an order
type ManufacturingOrderMaterial struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	OrderID          int64           `json:"order_id" gorm:"not null;index"`
	ItemID           int64           `json:"item_id" gorm:"not null"`
	BomComponentID   *int64          `json:"bom_component_id,omitempty"`
	PlannedQuantity  decimal.Decimal `json:"planned_quantity" gorm:"type:numeric(18,4);not null"`
	IssuedQuantity   decimal.Decimal `json:"issued_quantity" gorm:"type:numeric(18,4);not null;default:0"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity" gorm:"type:numeric(18,4);not null;default:0"`
	UomID            int64           `json:"uom_id" gorm:"not null"`
	WarehouseID      int64           `json:"warehouse_id" gorm:"not null"`
	LocationID       *int64          `json:"location_id,omitempty"`
}

func (ManufacturingOrderMaterial) TableName() string {
	return "manufacturing_order_materials"
}

// NetIssued is the quantity issued and not yet returned
func (m *ManufacturingOrderMaterial) NetIssued() decimal.Decimal {
	return m.IssuedQuantity.Sub(m.ReturnedQuantity)
}

// Outstanding is the planned quantity still to be issued
func (m *ManufacturingOrderMaterial) Outstanding() decimal.Decimal {
	out := m.PlannedQuantity.Sub(m.NetIssued())
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// ManufacturingOrderOperation is a routing step of an order
type ManufacturingOrderOperation struct {
	ID       int64           `json:"id" gorm:"primaryKey"`
	OrderID  int64           `json:"order_id" gorm:"not null;index"`
	Sequence int             `json:"sequence" gorm:"not null"`
	Name     string          `json:"name" gorm:"size:128;not null"`
	Status   OperationStatus `json:"status" gorm:"size:16;not null;default:pending"`
}

func (ManufacturingOrderOperation) TableName() string {
	return "manufacturing_order_operations"
}
