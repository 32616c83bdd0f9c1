package entities

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BOMStatus represents the lifecycle state of a bill of materials
type BOMStatus string

const (
	BOMDraft    BOMStatus = "draft"
	BOMActive   BOMStatus = "active"
	BOMObsolete BOMStatus = "obsolete"
)

// ComponentQuantityPlaces is the number of fractional digits kept for component quantities
const ComponentQuantityPlaces = 4

// BillOfMaterials belongs to one item and one division and owns an ordered set of components.
// Version is a free-text label; Revision is the ordering key used to pick the latest BOM.
type BillOfMaterials struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	ItemID      int64      `json:"item_id" gorm:"not null;index"`
	DivisionID  int64      `json:"division_id" gorm:"not null;index"`
	Status      BOMStatus  `json:"status" gorm:"size:16;not null;default:draft"`
	Version     string     `json:"version" gorm:"size:32;not null"`
	Revision    int        `json:"revision" gorm:"not null;default:0"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Components []BomComponent `json:"components,omitempty" gorm:"foreignKey:BomID"`
}

func (BillOfMaterials) TableName() string {
	return "bills_of_materials"
}

// BomComponent is a single line of a BOM. ParentComponentID, when set, forms a tree inside the same BOM.
type BomComponent struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	BomID             int64           `json:"bom_id" gorm:"not null;index"`
	ComponentItemID   int64           `json:"component_item_id" gorm:"not null;index"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:numeric(18,4);not null"`
	UomID             int64           `json:"uom_id" gorm:"not null"`
	ParentComponentID *int64          `json:"parent_component_id,omitempty" gorm:"index"`
	LevelNumber       int             `json:"level_number" gorm:"not null;default:1"`
	Position          int             `json:"position" gorm:"not null;default:0"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (BomComponent) TableName() string {
	return "bom_components"
}

// NewBomComponent creates a validated BomComponent. The quantity is truncated to four fractional digits.
func NewBomComponent(bomID, componentItemID int64, quantity decimal.Decimal, uomID int64, parentComponentID *int64, levelNumber, position int) (*BomComponent, error) {
	if bomID <= 0 {
		return nil, fmt.Errorf("bom id is required")
	}
	if componentItemID <= 0 {
		return nil, fmt.Errorf("component item id is required")
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity per must be positive, got %s", quantity.String())
	}
	if uomID <= 0 {
		return nil, fmt.Errorf("unit of measure is required")
	}
	if levelNumber <= 0 {
		return nil, fmt.Errorf("level number must be positive, got %d", levelNumber)
	}
	if position < 0 {
		return nil, fmt.Errorf("position cannot be negative, got %d", position)
	}

	return &BomComponent{
		BomID:             bomID,
		ComponentItemID:   componentItemID,
		Quantity:          quantity.Truncate(ComponentQuantityPlaces),
		UomID:             uomID,
		ParentComponentID: parentComponentID,
		LevelNumber:       levelNumber,
		Position:          position,
	}, nil
}

// SortComponents orders components by level, then position, then id
func SortComponents(components []BomComponent) {
	sort.SliceStable(components, func(i, j int) bool {
		a, b := components[i], components[j]
		if a.LevelNumber != b.LevelNumber {
			return a.LevelNumber < b.LevelNumber
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}

var bomTransitions = map[BOMStatus][]BOMStatus{
	BOMDraft:    {BOMActive, BOMObsolete},
	BOMActive:   {BOMObsolete},
	BOMObsolete: {},
}

// CanTransitionTo reports whether the BOM may move to the target status
func (b *BillOfMaterials) CanTransitionTo(target BOMStatus) bool {
	for _, s := range bomTransitions[b.Status] {
		if s == target {
			return true
		}
	}
	return false
}
