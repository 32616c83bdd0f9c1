package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

func TestBOMValidator_DetectSimpleCycle(t *testing.T) {
	// 1 -> 2 -> 1
	edges := []ItemEdge{
		{ParentItemID: 1, ChildItemID: 2},
		{ParentItemID: 2, ChildItemID: 1},
	}

	result := NewBOMValidator().DetectCycles(edges)

	if !result.HasCycles {
		t.Error("Expected cycle to be detected")
	}
	if len(result.CyclePaths) == 0 {
		t.Error("Expected at least one cycle path")
	}
	if len(result.Errors) == 0 {
		t.Error("Expected validation errors for cycles")
	}
}

func TestBOMValidator_NoCycleInDiamond(t *testing.T) {
	// 1 -> 2 -> 4, 1 -> 3 -> 4
	edges := []ItemEdge{
		{ParentItemID: 1, ChildItemID: 2},
		{ParentItemID: 1, ChildItemID: 3},
		{ParentItemID: 2, ChildItemID: 4},
		{ParentItemID: 3, ChildItemID: 4},
	}

	result := NewBOMValidator().DetectCycles(edges)
	if result.HasCycles {
		t.Errorf("Expected no cycles, got %v", result.CyclePaths)
	}
}

func TestBOMValidator_WouldCreateCycle(t *testing.T) {
	v := NewBOMValidator()
	edges := []ItemEdge{
		{ParentItemID: 1, ChildItemID: 2},
		{ParentItemID: 2, ChildItemID: 3},
	}

	tests := []struct {
		name      string
		candidate ItemEdge
		expected  bool
	}{
		{"self_reference", ItemEdge{ParentItemID: 5, ChildItemID: 5}, true},
		{"closes_long_cycle", ItemEdge{ParentItemID: 3, ChildItemID: 1}, true},
		{"closes_short_cycle", ItemEdge{ParentItemID: 2, ChildItemID: 1}, true},
		{"new_branch", ItemEdge{ParentItemID: 1, ChildItemID: 3}, false},
		{"unrelated", ItemEdge{ParentItemID: 7, ChildItemID: 8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.WouldCreateCycle(edges, tt.candidate); got != tt.expected {
				t.Errorf("WouldCreateCycle(%v) = %v, want %v", tt.candidate, got, tt.expected)
			}
		})
	}
}

func TestBOMValidator_ValidateComponents(t *testing.T) {
	bom := &entities.BillOfMaterials{ID: 10}
	one := decimal.NewFromInt(1)
	root := int64(1)
	foreign := int64(99)

	components := []entities.BomComponent{
		{ID: 1, BomID: 10, ComponentItemID: 100, Quantity: one, LevelNumber: 1},
		{ID: 2, BomID: 10, ComponentItemID: 101, Quantity: one, ParentComponentID: &root, LevelNumber: 2},
		{ID: 3, BomID: 10, ComponentItemID: 102, Quantity: one, ParentComponentID: &root, LevelNumber: 3},
		{ID: 4, BomID: 10, ComponentItemID: 103, Quantity: one, ParentComponentID: &foreign, LevelNumber: 2},
		{ID: 5, BomID: 10, ComponentItemID: 101, Quantity: one, ParentComponentID: &root, LevelNumber: 2},
	}

	result := NewBOMValidator().ValidateComponents(bom, components)

	if result.Valid() {
		t.Fatal("Expected validation errors")
	}
	if len(result.LevelMismatches) != 1 || result.LevelMismatches[0].ID != 3 {
		t.Errorf("Expected component 3 to have a level mismatch, got %v", result.LevelMismatches)
	}
	if len(result.ForeignParents) != 1 || result.ForeignParents[0].ID != 4 {
		t.Errorf("Expected component 4 to reference a foreign parent, got %v", result.ForeignParents)
	}
	if len(result.DuplicateLines) != 2 {
		t.Errorf("Expected duplicate pair for item 101, got %d lines", len(result.DuplicateLines))
	}
}

func TestBOMValidator_ValidateComponents_Clean(t *testing.T) {
	bom := &entities.BillOfMaterials{ID: 1}
	root := int64(1)
	components := []entities.BomComponent{
		{ID: 1, BomID: 1, ComponentItemID: 2, LevelNumber: 1},
		{ID: 2, BomID: 1, ComponentItemID: 3, ParentComponentID: &root, LevelNumber: 2},
	}

	if result := NewBOMValidator().ValidateComponents(bom, components); !result.Valid() {
		t.Errorf("Expected clean BOM, got %v", result.Errors)
	}
}
