package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// Models lists every table owned by the store
func Models() []interface{} {
	return []interface{}{
		&entities.Item{},
		&entities.Division{},
		&entities.Warehouse{},
		&entities.Location{},
		&entities.BillOfMaterials{},
		&entities.BomComponent{},
		&entities.InventoryRecord{},
		&entities.InventoryMovement{},
		&entities.ManufacturingOrder{},
		&entities.ManufacturingOrderMaterial{},
		&entities.ManufacturingOrderOperation{},
		&entities.InterDivisionTransfer{},
		&entities.InterDivisionTransferItem{},
		&entities.Currency{},
		&entities.CostType{},
		&entities.ItemCost{},
		&entities.PricingScenario{},
		&entities.ItemPricing{},
	}
}

// uniqueIndexes need NULLS NOT DISTINCT (postgres 15+) so unscoped inventory keys stay unique
var uniqueIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_inventory_records_key
		ON inventory_records (item_id, warehouse_id, location_id, lot_number) NULLS NOT DISTINCT`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_item_pricings_item_scenario
		ON item_pricings (item_id, pricing_scenario_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_locations_warehouse_code
		ON locations (warehouse_id, code)`,
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
