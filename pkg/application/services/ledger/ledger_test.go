package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/divmrp/pkg/infrastructure/testing"
)

func newTestLedger(f *testhelpers.Fixture) *Ledger {
	return NewLedger(f.Store, f.Store, f.Events, nil)
}

func apply(t *testing.T, f *testhelpers.Fixture, l *Ledger, key entities.InventoryKey, delta string) (*entities.InventoryRecord, error) {
	t.Helper()
	var record *entities.InventoryRecord
	err := f.Store.WithTransaction(context.Background(), func(ctx context.Context, tx repositories.Store) error {
		var err error
		record, err = l.ApplyDelta(ctx, tx, key, decimal.RequireFromString(delta), entities.MovementReference{Type: entities.RefAdjustment})
		return err
	})
	return record, err
}

func TestLedger_ApplyDelta(t *testing.T) {
	lot := "LOT-7"
	tests := []struct {
		name       string
		seed       string
		delta      string
		wantErr    error
		wantOnHand string
	}{
		{"credit_creates_record", "", "12.5", nil, "12.5"},
		{"debit_missing_record", "", "-1", entities.ErrInsufficientStock, ""},
		{"credit_existing", "10", "5", nil, "15"},
		{"debit_to_zero", "10", "-10", nil, "0"},
		{"debit_below_zero", "10", "-10.0001", entities.ErrInsufficientStock, "10"},
		{"zero_delta", "10", "0", entities.ErrValidation, "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testhelpers.BuildTextileScenario()
			l := newTestLedger(f)
			key := entities.InventoryKey{ItemID: f.Fabric.ID, WarehouseID: f.WeavingWH.ID, LotNumber: &lot}
			if tt.seed != "" {
				f.Stock(key, tt.seed)
			}

			record, err := apply(t, f, l, key, tt.delta)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if !record.QuantityAvailable.Equal(record.QuantityOnHand.Sub(record.QuantityAllocated)) {
					t.Errorf("Available %s drifted from on hand %s", record.QuantityAvailable, record.QuantityOnHand)
				}
			}

			if tt.wantOnHand != "" {
				if got := f.OnHand(key); !got.Equal(decimal.RequireFromString(tt.wantOnHand)) {
					t.Errorf("Expected on hand %s, got %s", tt.wantOnHand, got)
				}
			}
		})
	}
}

func TestLedger_InsufficientStockNamesItemOnce(t *testing.T) {
	tests := []struct {
		name    string
		stocked string
	}{
		{"short_record", "3"},
		{"missing_record", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testhelpers.BuildTextileScenario()
			l := newTestLedger(f)
			key := testhelpers.Key(f.Button.ID, f.GarmentWH.ID)
			if tt.stocked != "" {
				f.Stock(key, tt.stocked)
			}

			_, err := apply(t, f, l, key, "-4")
			if !errors.Is(err, entities.ErrInsufficientStock) {
				t.Fatalf("Expected insufficient stock, got %v", err)
			}
			item := fmt.Sprintf("item=%d ", f.Button.ID)
			if n := strings.Count(err.Error(), item); n != 1 {
				t.Errorf("Expected %q once in %q, got %d", item, err.Error(), n)
			}
			if strings.Contains(err.Error(), fmt.Sprintf("item %d", f.Button.ID)) {
				t.Errorf("Expected the item only inside the key, got %q", err.Error())
			}
		})
	}
}

func TestLedger_NullKeysAreExact(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	l := newTestLedger(f)
	bin := f.WeavingBin.ID
	unscoped := testhelpers.Key(f.Fabric.ID, f.WeavingWH.ID)
	scoped := entities.InventoryKey{ItemID: f.Fabric.ID, WarehouseID: f.WeavingWH.ID, LocationID: &bin}
	f.Stock(unscoped, "40")

	if _, err := apply(t, f, l, scoped, "-1"); !errors.Is(err, entities.ErrInsufficientStock) {
		t.Fatalf("Expected location-scoped debit to miss the unscoped record, got %v", err)
	}
	if _, err := apply(t, f, l, scoped, "5"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if got := f.OnHand(unscoped); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected unscoped record untouched at 40, got %s", got)
	}
	if got := f.OnHand(scoped); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected scoped record at 5, got %s", got)
	}
}

func TestLedger_WritesMovementJournal(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	l := newTestLedger(f)
	key := testhelpers.Key(f.Yarn.ID, f.WeavingWH.ID)

	if _, err := apply(t, f, l, key, "100"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if _, err := apply(t, f, l, key, "-30"); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}

	movements, err := l.Movements(context.Background(), f.Yarn.ID)
	if err != nil {
		t.Fatalf("Movements failed: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("Expected 2 movements, got %d", len(movements))
	}
	last := movements[1]
	if !last.QuantityBefore.Equal(decimal.NewFromInt(100)) || !last.QuantityAfter.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Unexpected journal row %+v", last)
	}
}

func TestLedger_Adjust(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	l := newTestLedger(f)
	ctx := context.Background()

	record, err := l.Adjust(ctx, dto.AdjustmentRequest{
		ItemID:      f.Button.ID,
		WarehouseID: f.GarmentWH.ID,
		Quantity:    decimal.NewFromInt(500),
		Note:        "opening balance",
	})
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if !record.QuantityOnHand.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected 500 on hand, got %s", record.QuantityOnHand)
	}
	if got := f.Events.EventsOfType(events.InventoryAdjustedEvent); len(got) != 1 {
		t.Errorf("Expected one inventory.adjusted event, got %d", len(got))
	}

	wrongBin := f.WeavingBin.ID
	_, err = l.Adjust(ctx, dto.AdjustmentRequest{
		ItemID:      f.Button.ID,
		WarehouseID: f.GarmentWH.ID,
		LocationID:  &wrongBin,
		Quantity:    decimal.NewFromInt(1),
	})
	if !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected location from another warehouse to be rejected, got %v", err)
	}

	_, err = l.Adjust(ctx, dto.AdjustmentRequest{ItemID: 9999, WarehouseID: f.GarmentWH.ID, Quantity: decimal.NewFromInt(1)})
	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected unknown item to be not found, got %v", err)
	}
}
