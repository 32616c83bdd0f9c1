package entities

import "time"

// Division is an operating unit that owns warehouses
type Division struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Division) TableName() string {
	return "divisions"
}

// Warehouse belongs to exactly one division
type Warehouse struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	DivisionID int64     `json:"division_id" gorm:"not null;index"`
	Code       string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

// Location is a storage position inside a warehouse
type Location struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	WarehouseID int64     `json:"warehouse_id" gorm:"not null;index"`
	Code        string    `json:"code" gorm:"size:32;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Location) TableName() string {
	return "locations"
}
