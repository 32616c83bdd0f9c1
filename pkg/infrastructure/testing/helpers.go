package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/repositories/memory"
)

// Fixture is a small two-division textile plant: the weaving division makes fabric, the garment
// division turns fabric and buttons into shirts.
type Fixture struct {
	Store  *memory.Store
	Events *events.InMemoryEventStore

	Weaving  *entities.Division
	Garments *entities.Division

	WeavingWH  *entities.Warehouse
	GarmentWH  *entities.Warehouse
	WeavingBin *entities.Location
	GarmentBin *entities.Location

	Yarn   *entities.Item
	Fabric *entities.Item
	Button *entities.Item
	Shirt  *entities.Item

	// ShirtBOM is active: 2.5 fabric (meters) and 8 buttons per shirt
	ShirtBOM        *entities.BillOfMaterials
	FabricComponent *entities.BomComponent
	ButtonComponent *entities.BomComponent

	USD *entities.Currency
	EUR *entities.Currency

	Material *entities.CostType
	Labor    *entities.CostType
	Indirect *entities.CostType

	// Shirt costs: material 60, labor 30, indirect overhead 10
	Standard *entities.PricingScenario // markup 20%, discount 10%, indirect included
	Lean     *entities.PricingScenario // markup 20%, discount 10%, indirect excluded
}

const (
	UomMeter = int64(1)
	UomEach  = int64(2)
)

// BuildTextileScenario builds the fixture on a fresh in-memory store - panics on setup error
func BuildTextileScenario() *Fixture {
	ctx := context.Background()
	f := &Fixture{
		Store:  memory.NewStore(),
		Events: events.NewInMemoryEventStore(),
	}

	must(f.Store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		f.Weaving = &entities.Division{Code: "WEAVING", Name: "Weaving Division"}
		f.Garments = &entities.Division{Code: "GARMENTS", Name: "Garment Division"}
		for _, d := range []*entities.Division{f.Weaving, f.Garments} {
			must(tx.Sites().SaveDivision(ctx, d))
		}

		f.WeavingWH = &entities.Warehouse{DivisionID: f.Weaving.ID, Code: "WV-MAIN", Name: "Weaving main store"}
		f.GarmentWH = &entities.Warehouse{DivisionID: f.Garments.ID, Code: "GM-MAIN", Name: "Garment main store"}
		for _, w := range []*entities.Warehouse{f.WeavingWH, f.GarmentWH} {
			must(tx.Sites().SaveWarehouse(ctx, w))
		}

		f.WeavingBin = &entities.Location{WarehouseID: f.WeavingWH.ID, Code: "A-01"}
		f.GarmentBin = &entities.Location{WarehouseID: f.GarmentWH.ID, Code: "B-01"}
		for _, l := range []*entities.Location{f.WeavingBin, f.GarmentBin} {
			must(tx.Sites().SaveLocation(ctx, l))
		}

		f.Yarn = mustItem("YRN-COT-40", "Cotton yarn 40s", entities.RawMaterial, UomMeter)
		f.Fabric = mustItem("FAB-POP-150", "Poplin fabric 150cm", entities.SemiFinished, UomMeter)
		f.Button = mustItem("BTN-11MM", "Shirt button 11mm", entities.RawMaterial, UomEach)
		f.Shirt = mustItem("SHT-OX-M", "Oxford shirt M", entities.FinishedProduct, UomEach)
		for _, it := range []*entities.Item{f.Yarn, f.Fabric, f.Button, f.Shirt} {
			must(tx.Items().SaveItem(ctx, it))
		}

		activated := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
		f.ShirtBOM = &entities.BillOfMaterials{
			ItemID:      f.Shirt.ID,
			DivisionID:  f.Garments.ID,
			Status:      entities.BOMActive,
			Version:     "v1",
			Revision:    1,
			ActivatedAt: &activated,
		}
		must(tx.BOMs().SaveBOM(ctx, f.ShirtBOM))

		f.FabricComponent = mustComponent(f.ShirtBOM.ID, f.Fabric.ID, "2.5", UomMeter, 1)
		f.ButtonComponent = mustComponent(f.ShirtBOM.ID, f.Button.ID, "8", UomEach, 2)
		for _, c := range []*entities.BomComponent{f.FabricComponent, f.ButtonComponent} {
			must(tx.BOMs().SaveComponent(ctx, c))
		}

		f.USD = &entities.Currency{Code: "USD", Name: "US Dollar", IsBaseCurrency: true}
		f.EUR = &entities.Currency{Code: "EUR", Name: "Euro"}
		for _, c := range []*entities.Currency{f.USD, f.EUR} {
			must(tx.Pricing().SaveCurrency(ctx, c))
		}

		f.Material = &entities.CostType{Name: "Material", Category: entities.CostMaterial}
		f.Labor = &entities.CostType{Name: "Direct labor", Category: entities.CostLabor}
		f.Indirect = &entities.CostType{Name: "Plant overhead", Category: entities.CostIndirectOverhead}
		for _, ct := range []*entities.CostType{f.Material, f.Labor, f.Indirect} {
			must(tx.Pricing().SaveCostType(ctx, ct))
		}

		for _, c := range []struct {
			costType *entities.CostType
			amount   string
		}{
			{f.Material, "60"},
			{f.Labor, "30"},
			{f.Indirect, "10"},
		} {
			must(tx.Pricing().SaveItemCost(ctx, &entities.ItemCost{
				ItemID:        f.Shirt.ID,
				CostTypeID:    c.costType.ID,
				Amount:        decimal.RequireFromString(c.amount),
				CurrencyID:    f.USD.ID,
				EffectiveDate: activated,
			}))
		}

		f.Standard = &entities.PricingScenario{
			Name:                 "Standard",
			MarkupPercentage:     decimal.NewFromInt(20),
			DiscountPercentage:   decimal.NewFromInt(10),
			IncludeIndirectCosts: true,
			Status:               "active",
		}
		f.Lean = &entities.PricingScenario{
			Name:               "Lean",
			MarkupPercentage:   decimal.NewFromInt(20),
			DiscountPercentage: decimal.NewFromInt(10),
			Status:             "active",
		}
		for _, sc := range []*entities.PricingScenario{f.Standard, f.Lean} {
			must(tx.Pricing().SaveScenario(ctx, sc))
		}
		return nil
	}))

	return f
}

// Stock puts qty on hand for the key - panics on error
func (f *Fixture) Stock(key entities.InventoryKey, qty string) *entities.InventoryRecord {
	record := entities.NewInventoryRecord(key)
	record.Apply(decimal.RequireFromString(qty))
	must(f.Store.Inventory().SaveRecord(context.Background(), record))
	return record
}

// OnHand returns the committed on-hand quantity of the key, zero when no record exists
func (f *Fixture) OnHand(key entities.InventoryKey) decimal.Decimal {
	record, err := f.Store.Inventory().FindRecord(context.Background(), key)
	must(err)
	if record == nil {
		return decimal.Zero
	}
	return record.QuantityOnHand
}

// Key builds an unscoped inventory key
func Key(itemID, warehouseID int64) entities.InventoryKey {
	return entities.InventoryKey{ItemID: itemID, WarehouseID: warehouseID}
}

func mustItem(code, name string, itemType entities.ItemType, uomID int64) *entities.Item {
	item, err := entities.NewItem(code, name, itemType, uomID)
	if err != nil {
		panic(err)
	}
	return item
}

func mustComponent(bomID, itemID int64, qty string, uomID int64, position int) *entities.BomComponent {
	c, err := entities.NewBomComponent(bomID, itemID, decimal.RequireFromString(qty), uomID, nil, 1, position)
	if err != nil {
		panic(err)
	}
	return c
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
