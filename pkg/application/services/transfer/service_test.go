package transfer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/ledger"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/divmrp/pkg/infrastructure/testing"
)

func newTestService(f *testhelpers.Fixture) *Service {
	return NewService(f.Store, f.Store, ledger.NewLedger(f.Store, f.Store, f.Events, nil), f.Events, nil)
}

func fabricLine(f *testhelpers.Fixture, qty string) dto.TransferLineRequest {
	return dto.TransferLineRequest{
		ItemID:          f.Fabric.ID,
		Quantity:        decimal.RequireFromString(qty),
		FromWarehouseID: f.WeavingWH.ID,
		ToWarehouseID:   f.GarmentWH.ID,
	}
}

func weavingToGarments(f *testhelpers.Fixture, lines ...dto.TransferLineRequest) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		FromDivisionID: f.Weaving.ID,
		ToDivisionID:   f.Garments.ID,
		Items:          lines,
	}
}

func TestService_SettleMovesStockBetweenDivisions(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()
	source := testhelpers.Key(f.Fabric.ID, f.WeavingWH.ID)
	destination := testhelpers.Key(f.Fabric.ID, f.GarmentWH.ID)
	f.Stock(source, "100")

	transfer, err := s.Create(ctx, weavingToGarments(f, fabricLine(f, "50")))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasPrefix(transfer.TransferNumber, "IDT-") || transfer.Status != entities.TransferDraft {
		t.Errorf("Unexpected new transfer %+v", transfer)
	}

	result, err := s.Settle(ctx, transfer.ID)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if got := f.OnHand(source); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected 50 left at weaving, got %s", got)
	}
	if got := f.OnHand(destination); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected 50 received at garments, got %s", got)
	}
	if result.Status != string(entities.TransferCompleted) || result.CompletedAt == nil {
		t.Errorf("Expected completed result, got %+v", result)
	}
	if len(result.Lines) != 1 || !result.Lines[0].SourceOnHand.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Unexpected settled lines %+v", result.Lines)
	}

	stored, err := s.Get(ctx, transfer.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != entities.TransferCompleted || stored.CompletedAt == nil {
		t.Errorf("Expected stored transfer to be completed, got %s", stored.Status)
	}
	if stored.Items[0].Status != entities.TransferItemTransferred {
		t.Errorf("Expected line to be transferred, got %s", stored.Items[0].Status)
	}

	movements, _ := f.Store.Inventory().ListMovements(ctx, f.Fabric.ID)
	if len(movements) != 2 {
		t.Fatalf("Expected 2 movements, got %d", len(movements))
	}
	for _, m := range movements {
		if m.ReferenceType != entities.RefTransfer || m.ReferenceID != transfer.ID {
			t.Errorf("Expected movement to reference the transfer, got %s/%d", m.ReferenceType, m.ReferenceID)
		}
	}
	if got := f.Events.EventsOfType(events.TransferSettledEvent); len(got) != 1 {
		t.Errorf("Expected one settled event, got %d", len(got))
	}

	if _, err := s.Settle(ctx, transfer.ID); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected second settlement to be rejected, got %v", err)
	}
	if got := f.OnHand(destination); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected second settlement to change nothing, got %s", got)
	}
}

func TestService_SettleConservesQuantity(t *testing.T) {
	tests := []struct {
		name  string
		stock string
		qty   string
	}{
		{"whole_stock", "12.5", "12.5"},
		{"fraction", "100", "0.0001"},
		{"partial", "40", "17.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testhelpers.BuildTextileScenario()
			s := newTestService(f)
			ctx := context.Background()
			source := testhelpers.Key(f.Fabric.ID, f.WeavingWH.ID)
			destination := testhelpers.Key(f.Fabric.ID, f.GarmentWH.ID)
			f.Stock(source, tt.stock)
			before := f.OnHand(source).Add(f.OnHand(destination))

			transfer, err := s.Create(ctx, weavingToGarments(f, fabricLine(f, tt.qty)))
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if _, err := s.Settle(ctx, transfer.ID); err != nil {
				t.Fatalf("Settle failed: %v", err)
			}

			after := f.OnHand(source).Add(f.OnHand(destination))
			if !after.Equal(before) {
				t.Errorf("Expected total %s to be conserved, got %s", before, after)
			}
			if got := f.OnHand(destination); !got.Equal(decimal.RequireFromString(tt.qty)) {
				t.Errorf("Expected destination to hold %s, got %s", tt.qty, got)
			}
		})
	}
}

func TestService_SettleIsAllOrNothing(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()
	fabricSource := testhelpers.Key(f.Fabric.ID, f.WeavingWH.ID)
	yarnSource := testhelpers.Key(f.Yarn.ID, f.WeavingWH.ID)
	f.Stock(fabricSource, "100")
	f.Stock(yarnSource, "5")

	yarn := fabricLine(f, "10")
	yarn.ItemID = f.Yarn.ID
	transfer, err := s.Create(ctx, weavingToGarments(f,
		fabricLine(f, "30"),
		fabricLine(f, "20"),
		yarn,
	))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = s.Settle(ctx, transfer.ID)
	if !errors.Is(err, entities.ErrInsufficientStock) {
		t.Fatalf("Expected insufficient stock, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Expected error to name the failing line, got %v", err)
	}

	if got := f.OnHand(fabricSource); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected fabric source untouched, got %s", got)
	}
	if got := f.OnHand(testhelpers.Key(f.Fabric.ID, f.GarmentWH.ID)); !got.IsZero() {
		t.Errorf("Expected nothing received, got %s", got)
	}
	if movements, _ := f.Store.Inventory().ListMovements(ctx, f.Fabric.ID); len(movements) != 0 {
		t.Errorf("Expected no journal rows, got %d", len(movements))
	}

	stored, _ := s.Get(ctx, transfer.ID)
	if stored.Status != entities.TransferDraft || stored.CompletedAt != nil {
		t.Errorf("Expected transfer to stay draft, got %s", stored.Status)
	}
	for _, line := range stored.Items {
		if line.Status != entities.TransferItemPending {
			t.Errorf("Expected line %d pending, got %s", line.ID, line.Status)
		}
	}
	if got := f.Events.EventsOfType(events.TransferSettledEvent); len(got) != 0 {
		t.Errorf("Expected no settled event, got %d", len(got))
	}
}

func TestService_SettleUsesExactKeys(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()
	lot := "LOT-7"
	bin := f.WeavingBin.ID

	// stock sits in the bin, the line asks for the unscoped key
	f.Stock(entities.InventoryKey{ItemID: f.Fabric.ID, WarehouseID: f.WeavingWH.ID, LocationID: &bin, LotNumber: &lot}, "80")

	transfer, err := s.Create(ctx, weavingToGarments(f, fabricLine(f, "10")))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Settle(ctx, transfer.ID); !errors.Is(err, entities.ErrInsufficientStock) {
		t.Fatalf("Expected unscoped key to have no stock, got %v", err)
	}

	line := fabricLine(f, "10")
	line.FromLocationID = &bin
	line.LotNumber = &lot
	scoped, err := s.Create(ctx, weavingToGarments(f, line))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Settle(ctx, scoped.ID); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	received := entities.InventoryKey{ItemID: f.Fabric.ID, WarehouseID: f.GarmentWH.ID, LotNumber: &lot}
	if got := f.OnHand(received); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected lot to arrive at the unlocated destination key, got %s", got)
	}
}

func TestService_CreateValidation(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	weavingBin := f.WeavingBin.ID

	tests := []struct {
		name    string
		req     func() dto.CreateTransferRequest
		wantErr error
	}{
		{"same_division", func() dto.CreateTransferRequest {
			r := weavingToGarments(f, fabricLine(f, "1"))
			r.ToDivisionID = f.Weaving.ID
			return r
		}, entities.ErrValidation},
		{"no_lines", func() dto.CreateTransferRequest { return weavingToGarments(f) }, entities.ErrValidation},
		{"zero_quantity", func() dto.CreateTransferRequest { return weavingToGarments(f, fabricLine(f, "0")) }, entities.ErrValidation},
		{"unknown_division", func() dto.CreateTransferRequest {
			r := weavingToGarments(f, fabricLine(f, "1"))
			r.ToDivisionID = 99
			return r
		}, entities.ErrNotFound},
		{"unknown_item", func() dto.CreateTransferRequest {
			l := fabricLine(f, "1")
			l.ItemID = 99
			return weavingToGarments(f, l)
		}, entities.ErrNotFound},
		{"source_warehouse_of_other_division", func() dto.CreateTransferRequest {
			l := fabricLine(f, "1")
			l.FromWarehouseID = f.GarmentWH.ID
			return weavingToGarments(f, l)
		}, entities.ErrValidation},
		{"destination_location_of_other_warehouse", func() dto.CreateTransferRequest {
			l := fabricLine(f, "1")
			l.ToLocationID = &weavingBin
			return weavingToGarments(f, l)
		}, entities.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Create(context.Background(), tt.req()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_SettleRejectsNonDraft(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()
	f.Stock(testhelpers.Key(f.Fabric.ID, f.WeavingWH.ID), "10")

	for _, status := range []entities.TransferStatus{entities.TransferInProgress, entities.TransferCancelled} {
		transfer, err := s.Create(ctx, weavingToGarments(f, fabricLine(f, "1")))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		transfer.Status = status
		if err := f.Store.Transfers().UpdateTransfer(ctx, transfer); err != nil {
			t.Fatalf("UpdateTransfer failed: %v", err)
		}
		if _, err := s.Settle(ctx, transfer.ID); !errors.Is(err, entities.ErrInvalidTransition) {
			t.Errorf("%s: expected InvalidTransition, got %v", status, err)
		}
	}

	if _, err := s.Settle(ctx, 404); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected NotFound for unknown transfer, got %v", err)
	}
}

func TestService_SettleRejectsSameDivision(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()

	transfer := &entities.InterDivisionTransfer{
		TransferNumber: "IDT-LEGACY-1",
		FromDivisionID: f.Weaving.ID,
		ToDivisionID:   f.Weaving.ID,
		Status:         entities.TransferDraft,
		Items: []entities.InterDivisionTransferItem{{
			ItemID:          f.Fabric.ID,
			Quantity:        decimal.NewFromInt(1),
			FromWarehouseID: f.WeavingWH.ID,
			ToWarehouseID:   f.WeavingWH.ID,
			Status:          entities.TransferItemPending,
		}},
	}
	if err := f.Store.Transfers().CreateTransfer(ctx, transfer); err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}
	if _, err := s.Settle(ctx, transfer.ID); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected Validation, got %v", err)
	}
}

func TestService_Cancel(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()
	f.Stock(testhelpers.Key(f.Fabric.ID, f.WeavingWH.ID), "10")

	open, _ := s.Create(ctx, weavingToGarments(f, fabricLine(f, "1")))
	cancelled, err := s.Cancel(ctx, open.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != entities.TransferCancelled {
		t.Errorf("Expected cancelled, got %s", cancelled.Status)
	}
	if _, err := s.Cancel(ctx, open.ID); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected second cancel to fail, got %v", err)
	}

	done, _ := s.Create(ctx, weavingToGarments(f, fabricLine(f, "1")))
	if _, err := s.Settle(ctx, done.ID); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if _, err := s.Cancel(ctx, done.ID); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected completed transfer to refuse cancel, got %v", err)
	}
	if got := f.Events.EventsOfType(events.TransferCancelledEvent); len(got) != 1 {
		t.Errorf("Expected one cancelled event, got %d", len(got))
	}
}
