package entities

import (
	"fmt"
	"time"
)

// ItemType represents the production role of an item
type ItemType string

const (
	RawMaterial     ItemType = "raw_material"
	SemiFinished    ItemType = "semi_finished"
	FinishedProduct ItemType = "finished_product"
)

// Valid reports whether the item type is one of the known types
func (t ItemType) Valid() bool {
	switch t {
	case RawMaterial, SemiFinished, FinishedProduct:
		return true
	default:
		return false
	}
}

// Item represents a manufacturing item. Descriptive fields are owned by the entity store.
type Item struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Type      ItemType  `json:"type" gorm:"size:32;not null"`
	UomID     int64     `json:"uom_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// NewItem creates a validated Item
func NewItem(code, name string, itemType ItemType, uomID int64) (*Item, error) {
	if code == "" {
		return nil, fmt.Errorf("item code cannot be empty")
	}
	if !itemType.Valid() {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}
	if uomID <= 0 {
		return nil, fmt.Errorf("unit of measure is required")
	}
	return &Item{Code: code, Name: name, Type: itemType, UomID: uomID}, nil
}
