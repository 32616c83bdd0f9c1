package manufacturing

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/application/services/ledger"
	"github.com/vsinha/divmrp/pkg/application/services/mrp"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/infrastructure/events"
	testhelpers "github.com/vsinha/divmrp/pkg/infrastructure/testing"
)

func newTestService(f *testhelpers.Fixture) *Service {
	ldg := ledger.NewLedger(f.Store, f.Store, f.Events, nil)
	return NewService(f.Store, f.Store, mrp.NewExploder(f.Store, nil), ldg, f.Events, nil)
}

func shirtOrder(f *testhelpers.Fixture, qty int64) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		ItemID:      f.Shirt.ID,
		DivisionID:  f.Garments.ID,
		Quantity:    decimal.NewFromInt(qty),
		WarehouseID: f.GarmentWH.ID,
	}
}

func TestService_CreateExplodesLatestActiveBOM(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)

	order, err := s.Create(context.Background(), shirtOrder(f, 10))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !regexp.MustCompile(`^MO-\d{8}-[0-9A-F]{8}$`).MatchString(order.OrderNumber) {
		t.Errorf("Unexpected order number %q", order.OrderNumber)
	}
	if order.Status != entities.OrderDraft {
		t.Errorf("Expected draft order, got %s", order.Status)
	}
	if order.BomID == nil || *order.BomID != f.ShirtBOM.ID {
		t.Errorf("Expected shirt BOM to be resolved, got %v", order.BomID)
	}
	if len(order.Materials) != 2 {
		t.Fatalf("Expected 2 materials, got %d", len(order.Materials))
	}

	fabric := order.Materials[0]
	if fabric.ItemID != f.Fabric.ID || !fabric.PlannedQuantity.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected 25 m of fabric, got %+v", fabric)
	}
	if !fabric.IssuedQuantity.IsZero() || !fabric.ReturnedQuantity.IsZero() {
		t.Errorf("Expected nothing issued or returned yet, got %+v", fabric)
	}
	if fabric.WarehouseID != f.GarmentWH.ID || fabric.BomComponentID == nil || *fabric.BomComponentID != f.FabricComponent.ID {
		t.Errorf("Expected material to trace back to the BOM line and the garment warehouse, got %+v", fabric)
	}
	if len(order.Operations) != 0 {
		t.Errorf("Expected no generic operation for an exploded order, got %d", len(order.Operations))
	}

	stored, err := s.Get(context.Background(), order.ID)
	if err != nil || len(stored.Materials) != 2 {
		t.Errorf("Expected persisted order with materials, got %+v (%v)", stored, err)
	}
	if got := f.Events.EventsOfType(events.ManufacturingOrderCreatedEvent); len(got) != 1 {
		t.Errorf("Expected one created event, got %d", len(got))
	}
}

func TestService_CreateWithoutBOM(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)

	order, err := s.Create(context.Background(), dto.CreateOrderRequest{
		ItemID:      f.Fabric.ID,
		DivisionID:  f.Weaving.ID,
		Quantity:    decimal.NewFromInt(100),
		WarehouseID: f.WeavingWH.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if order.BomID != nil || len(order.Materials) != 0 {
		t.Errorf("Expected no BOM and no materials, got %+v", order)
	}
	if len(order.Operations) != 1 || order.Operations[0].Name != entities.GenericOperationName {
		t.Errorf("Expected a single generic operation, got %+v", order.Operations)
	}
}

func TestService_CreateValidation(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	foreignBin := f.WeavingBin.ID
	fabricBOM := &entities.BillOfMaterials{ItemID: f.Fabric.ID, DivisionID: f.Weaving.ID, Status: entities.BOMActive, Version: "v1"}
	if err := f.Store.BOMs().SaveBOM(context.Background(), fabricBOM); err != nil {
		t.Fatalf("SaveBOM failed: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(r *dto.CreateOrderRequest)
		wantErr error
	}{
		{"zero_quantity", func(r *dto.CreateOrderRequest) { r.Quantity = decimal.Zero }, entities.ErrValidation},
		{"missing_item", func(r *dto.CreateOrderRequest) { r.ItemID = 0 }, entities.ErrValidation},
		{"unknown_item", func(r *dto.CreateOrderRequest) { r.ItemID = 999 }, entities.ErrNotFound},
		{"end_before_start", func(r *dto.CreateOrderRequest) { r.PlannedStart, r.PlannedEnd = &start, &end }, entities.ErrValidation},
		{"location_of_other_warehouse", func(r *dto.CreateOrderRequest) { r.LocationID = &foreignBin }, entities.ErrValidation},
		{"warehouse_of_other_division", func(r *dto.CreateOrderRequest) { r.WarehouseID = f.WeavingWH.ID }, entities.ErrValidation},
		{"bom_of_other_item", func(r *dto.CreateOrderRequest) { r.BomID = &fabricBOM.ID }, entities.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := shirtOrder(f, 5)
			tt.mutate(&req)
			if _, err := s.Create(context.Background(), req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_CreateRejectsObsoleteBOM(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()

	old := &entities.BillOfMaterials{ItemID: f.Shirt.ID, DivisionID: f.Garments.ID, Status: entities.BOMObsolete, Version: "v0"}
	_ = f.Store.BOMs().SaveBOM(ctx, old)
	_ = f.Store.BOMs().SaveComponent(ctx, &entities.BomComponent{BomID: old.ID, ComponentItemID: f.Fabric.ID, Quantity: decimal.NewFromInt(3), UomID: 1, LevelNumber: 1})

	req := shirtOrder(f, 1)
	req.BomID = &old.ID
	if _, err := s.Create(ctx, req); !errors.Is(err, entities.ErrInvalidTransition) {
		t.Errorf("Expected obsolete BOM to be rejected, got %v", err)
	}
}

func TestService_LatestActive(t *testing.T) {
	s := newTestService(testhelpers.BuildTextileScenario())

	tests := []struct {
		name     string
		boms     []*entities.BillOfMaterials
		expected int64
	}{
		{"none_active", []*entities.BillOfMaterials{{ID: 1, Status: entities.BOMDraft}}, 0},
		{"revision_wins", []*entities.BillOfMaterials{
			{ID: 1, Status: entities.BOMActive, Version: "v9", Revision: 2},
			{ID: 2, Status: entities.BOMActive, Version: "v1", Revision: 3},
		}, 2},
		{"natural_version_order", []*entities.BillOfMaterials{
			{ID: 1, Status: entities.BOMActive, Version: "v10"},
			{ID: 2, Status: entities.BOMActive, Version: "v9"},
		}, 1},
		{"id_breaks_ties", []*entities.BillOfMaterials{
			{ID: 4, Status: entities.BOMActive, Version: "A"},
			{ID: 7, Status: entities.BOMActive, Version: "A"},
			{ID: 9, Status: entities.BOMObsolete, Version: "Z", Revision: 5},
		}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.LatestActive(tt.boms)
			var id int64
			if got != nil {
				id = got.ID
			}
			if id != tt.expected {
				t.Errorf("Expected bom %d, got %d", tt.expected, id)
			}
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()

	order, err := s.Create(ctx, shirtOrder(f, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	steps := []struct {
		to      entities.OrderStatus
		wantErr error
	}{
		{entities.OrderPlanned, nil},
		{entities.OrderCompleted, entities.ErrInvalidTransition},
		{entities.OrderInProgress, nil},
		{entities.OrderCompleted, nil},
		{entities.OrderCancelled, entities.ErrInvalidTransition},
		{entities.OrderStatus("shipped"), entities.ErrValidation},
	}
	for _, step := range steps {
		_, err := s.UpdateStatus(ctx, order.ID, step.to)
		if step.wantErr == nil && err != nil {
			t.Fatalf("-> %s: unexpected error %v", step.to, err)
		}
		if step.wantErr != nil && !errors.Is(err, step.wantErr) {
			t.Fatalf("-> %s: expected %v, got %v", step.to, step.wantErr, err)
		}
	}

	stored, _ := s.Get(ctx, order.ID)
	if stored.Status != entities.OrderCompleted {
		t.Errorf("Expected completed order, got %s", stored.Status)
	}
}

func TestService_IssueAndReturnMaterials(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()
	fabricKey := testhelpers.Key(f.Fabric.ID, f.GarmentWH.ID)
	buttonKey := testhelpers.Key(f.Button.ID, f.GarmentWH.ID)
	f.Stock(fabricKey, "30")
	f.Stock(buttonKey, "100")

	order, err := s.Create(ctx, shirtOrder(f, 10))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.UpdateStatus(ctx, order.ID, entities.OrderPlanned); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	issued, err := s.IssueMaterials(ctx, order.ID)
	if err != nil {
		t.Fatalf("IssueMaterials failed: %v", err)
	}
	if issued.Status != entities.OrderInProgress {
		t.Errorf("Expected in_progress after issue, got %s", issued.Status)
	}
	if got := f.OnHand(fabricKey); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected 5 m of fabric left, got %s", got)
	}
	if got := f.OnHand(buttonKey); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected 20 buttons left, got %s", got)
	}

	if _, err := s.IssueMaterials(ctx, order.ID); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected second issue to have nothing to do, got %v", err)
	}

	fabric := issued.Materials[0]
	if _, err := s.ReturnMaterial(ctx, order.ID, fabric.ID, decimal.NewFromInt(26)); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected over-return to be rejected, got %v", err)
	}
	returned, err := s.ReturnMaterial(ctx, order.ID, fabric.ID, decimal.RequireFromString("2.5"))
	if err != nil {
		t.Fatalf("ReturnMaterial failed: %v", err)
	}
	if m, _ := returned.Material(fabric.ID); !m.ReturnedQuantity.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected 2.5 returned, got %s", m.ReturnedQuantity)
	}
	if got := f.OnHand(fabricKey); !got.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("Expected 7.5 m of fabric after return, got %s", got)
	}

	published := f.Events.EventsOfType(events.MaterialsReturnedEvent)
	if len(published) != 1 {
		t.Fatalf("Expected one returned event for the accepted return, got %d", len(published))
	}
	payload := published[0].Data().(events.MaterialsReturned)
	if payload.OrderID != order.ID || payload.MaterialID != fabric.ID || payload.ItemID != f.Fabric.ID {
		t.Errorf("Expected return of material %d on order %d, got %+v", fabric.ID, order.ID, payload)
	}
	if !payload.Quantity.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected 2.5 in the event, got %s", payload.Quantity)
	}
	if published[0].StreamID() != events.OrderStream(order.ID) {
		t.Errorf("Expected the order stream, got %s", published[0].StreamID())
	}
}

func TestService_IssueIsAllOrNothing(t *testing.T) {
	f := testhelpers.BuildTextileScenario()
	s := newTestService(f)
	ctx := context.Background()
	fabricKey := testhelpers.Key(f.Fabric.ID, f.GarmentWH.ID)
	buttonKey := testhelpers.Key(f.Button.ID, f.GarmentWH.ID)
	f.Stock(fabricKey, "30")
	f.Stock(buttonKey, "10")

	order, err := s.Create(ctx, shirtOrder(f, 10))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := s.IssueMaterials(ctx, order.ID); !errors.Is(err, entities.ErrInsufficientStock) {
		t.Fatalf("Expected insufficient buttons, got %v", err)
	}
	if got := f.OnHand(fabricKey); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected fabric untouched at 30, got %s", got)
	}
	stored, _ := s.Get(ctx, order.ID)
	if stored.Status != entities.OrderDraft || !stored.Materials[0].IssuedQuantity.IsZero() {
		t.Errorf("Expected order unchanged, got status %s issued %s", stored.Status, stored.Materials[0].IssuedQuantity)
	}
}
