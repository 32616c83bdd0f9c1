package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestManufacturingOrder_Validation(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	order, err := NewManufacturingOrder("MO-1", 1, 1, decimal.NewFromInt(10), &start, &end)
	if err != nil {
		t.Fatalf("Expected valid order creation to succeed: %v", err)
	}
	if order.Status != OrderDraft {
		t.Errorf("Expected draft status, got %s", order.Status)
	}

	testCases := []struct {
		name        string
		number      string
		itemID      int64
		divisionID  int64
		qty         decimal.Decimal
		start, end  *time.Time
		expectError string
	}{
		{"empty number", "", 1, 1, decimal.NewFromInt(1), nil, nil, "order number cannot be empty"},
		{"missing item", "MO", 0, 1, decimal.NewFromInt(1), nil, nil, "item id is required"},
		{"missing division", "MO", 1, 0, decimal.NewFromInt(1), nil, nil, "division id is required"},
		{"zero quantity", "MO", 1, 1, decimal.Zero, nil, nil, "quantity must be positive, got 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewManufacturingOrder(tc.number, tc.itemID, tc.divisionID, tc.qty, tc.start, tc.end)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}

	if _, err := NewManufacturingOrder("MO", 1, 1, decimal.NewFromInt(1), &end, &start); err == nil {
		t.Error("Expected error when planned end precedes planned start")
	}
}

func TestManufacturingOrder_TransitionTo(t *testing.T) {
	testCases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderDraft, OrderPlanned, true},
		{OrderDraft, OrderInProgress, true},
		{OrderDraft, OrderOnHold, false},
		{OrderPlanned, OrderOnHold, true},
		{OrderInProgress, OrderCompleted, true},
		{OrderOnHold, OrderInProgress, true},
		{OrderOnHold, OrderCompleted, false},
		{OrderCompleted, OrderInProgress, false},
		{OrderCancelled, OrderDraft, false},
	}

	for _, tc := range testCases {
		order := &ManufacturingOrder{OrderNumber: "MO", Status: tc.from}
		err := order.TransitionTo(tc.to)
		if tc.allowed && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.allowed {
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected invalid transition, got %v", tc.from, tc.to, err)
			}
			if order.Status != tc.from {
				t.Errorf("%s -> %s: status changed to %s", tc.from, tc.to, order.Status)
			}
		}
	}

	order := &ManufacturingOrder{Status: OrderDraft}
	if err := order.TransitionTo("shipped"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for unknown status, got %v", err)
	}
}

func TestManufacturingOrderMaterial_Outstanding(t *testing.T) {
	m := ManufacturingOrderMaterial{
		PlannedQuantity:  decimal.NewFromInt(10),
		IssuedQuantity:   decimal.NewFromInt(6),
		ReturnedQuantity: decimal.NewFromInt(1),
	}
	if !m.NetIssued().Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected net issued 5, got %s", m.NetIssued())
	}
	if !m.Outstanding().Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected outstanding 5, got %s", m.Outstanding())
	}

	m.IssuedQuantity = decimal.NewFromInt(12)
	if !m.Outstanding().IsZero() {
		t.Errorf("Expected over-issued material to have nothing outstanding, got %s", m.Outstanding())
	}
}
