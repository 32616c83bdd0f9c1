package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/orchestration"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	"github.com/vsinha/divmrp/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/divmrp/pkg/infrastructure/repositories/memory"
)

// Ids follow row order in example/textile
const (
	weavingDivision  = int64(1)
	garmentDivision  = int64(2)
	weavingWarehouse = int64(1)
	garmentWarehouse = int64(2)
	weavingBin       = int64(1)
	standardScenario = int64(1)
)

func main() {
	scenarioDir := flag.String("scenario", "example/textile", "Scenario directory")
	flag.Parse()

	if err := run(context.Background(), *scenarioDir); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir string) error {
	store := memory.NewStore()
	journal := events.NewInMemoryEventStore()

	summary, err := csv.NewLoader(nil).LoadDir(ctx, dir, store)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	app := orchestration.NewApplication(orchestration.Dependencies{
		Store:     store,
		Tx:        store,
		Stock:     store,
		Publisher: journal,
	})
	for _, req := range summary.OpeningStock {
		if _, err := app.Ledger.Adjust(ctx, req); err != nil {
			return fmt.Errorf("opening stock: %w", err)
		}
	}

	bin, lot := weavingBin, "LOT-2401"
	fabric, err := store.Items().GetItemByCode(ctx, "FAB-POP-150")
	if err != nil {
		return err
	}
	shirt, err := store.Items().GetItemByCode(ctx, "SHT-OX-M")
	if err != nil {
		return err
	}

	fmt.Println("🧵 Weaving ships fabric to the garment division...")
	transfer, err := app.Transfers.Create(ctx, dto.CreateTransferRequest{
		FromDivisionID: weavingDivision,
		ToDivisionID:   garmentDivision,
		Notes:          "fabric for the oxford shirt run",
		Items: []dto.TransferLineRequest{{
			ItemID:          fabric.ID,
			Quantity:        decimal.NewFromInt(30),
			FromWarehouseID: weavingWarehouse,
			FromLocationID:  &bin,
			ToWarehouseID:   garmentWarehouse,
			LotNumber:       &lot,
		}},
	})
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	settled, err := app.Transfers.Settle(ctx, transfer.ID)
	if err != nil {
		return fmt.Errorf("settle transfer: %w", err)
	}
	for _, line := range settled.Lines {
		fmt.Printf("  %s: %s moved, weaving left %s, garments now %s\n",
			transfer.TransferNumber, line.Quantity, line.SourceOnHand, line.DestinationOnHand)
	}
	fmt.Println()

	fmt.Println("👕 Planning 12 oxford shirts...")
	order, err := app.Manufacturing.Create(ctx, dto.CreateOrderRequest{
		ItemID:      shirt.ID,
		DivisionID:  garmentDivision,
		WarehouseID: garmentWarehouse,
		Quantity:    decimal.NewFromInt(12),
	})
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	for _, m := range order.Materials {
		item, err := store.Items().GetItem(ctx, m.ItemID)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %s planned\n", item.Code, m.PlannedQuantity)
	}

	if _, err := app.Manufacturing.IssueMaterials(ctx, order.ID); err != nil {
		fmt.Printf("  ⚠️  %s could not issue materials: %v\n", order.OrderNumber, err)
	} else {
		fmt.Printf("  %s materials issued\n", order.OrderNumber)
	}
	fmt.Println()

	fmt.Println("💰 Pricing under the Standard scenario...")
	price, err := app.Pricing.Calculate(ctx, dto.CalculatePriceRequest{ItemID: shirt.ID, PricingScenarioID: standardScenario})
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	fmt.Printf("  base %s + markup %s - discount %s = %s %s\n",
		price.BaseCost.StringFixed(2), price.MarkupAmount.StringFixed(2), price.DiscountAmount.StringFixed(2),
		price.FinalPrice.StringFixed(2), price.CurrencyCode)
	fmt.Println()

	all, err := journal.ReadAllEvents(0)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Done, %d domain events recorded\n", len(all))
	return nil
}
