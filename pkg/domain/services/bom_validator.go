package services

import (
	"fmt"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// BOMValidator provides validation for BOM structure integrity
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ItemEdge links a BOM's item to one of its component items
type ItemEdge struct {
	ParentItemID int64
	ChildItemID  int64
}

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	HasCycles       bool
	CyclePaths      [][]int64
	DuplicateLines  []entities.BomComponent
	ForeignParents  []entities.BomComponent
	LevelMismatches []entities.BomComponent
	Errors          []string
}

// Valid reports whether no problem was found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateComponents checks the internal structure of one BOM: every parent component must belong to
// the same BOM, children sit one level below their parent, and no item appears twice under the same parent.
func (v *BOMValidator) ValidateComponents(bom *entities.BillOfMaterials, components []entities.BomComponent) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:      make([][]int64, 0),
		DuplicateLines:  make([]entities.BomComponent, 0),
		ForeignParents:  make([]entities.BomComponent, 0),
		LevelMismatches: make([]entities.BomComponent, 0),
		Errors:          make([]string, 0),
	}

	byID := make(map[int64]entities.BomComponent, len(components))
	for _, c := range components {
		byID[c.ID] = c
	}

	seen := make(map[string]entities.BomComponent)
	for _, c := range components {
		if c.BomID != bom.ID {
			result.ForeignParents = append(result.ForeignParents, c)
			result.Errors = append(result.Errors, fmt.Sprintf("component %d belongs to bom %d, not %d", c.ID, c.BomID, bom.ID))
			continue
		}

		expectedLevel := 1
		if c.ParentComponentID != nil {
			parent, ok := byID[*c.ParentComponentID]
			if !ok || parent.BomID != bom.ID {
				result.ForeignParents = append(result.ForeignParents, c)
				result.Errors = append(result.Errors, fmt.Sprintf("component %d references parent %d outside bom %d", c.ID, *c.ParentComponentID, bom.ID))
				continue
			}
			expectedLevel = parent.LevelNumber + 1
		}
		if c.LevelNumber != expectedLevel {
			result.LevelMismatches = append(result.LevelMismatches, c)
			result.Errors = append(result.Errors, fmt.Sprintf("component %d has level %d, expected %d", c.ID, c.LevelNumber, expectedLevel))
		}

		key := fmt.Sprintf("%d|%d", parentKey(c.ParentComponentID), c.ComponentItemID)
		if existing, exists := seen[key]; exists {
			result.DuplicateLines = append(result.DuplicateLines, c, existing)
		} else {
			seen[key] = c
		}
	}

	if len(result.DuplicateLines) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Found %d duplicate BOM lines", len(result.DuplicateLines)))
	}

	return result
}

// DetectCycles finds item cycles across the given BOM edges
func (v *BOMValidator) DetectCycles(edges []ItemEdge) *ValidationResult {
	result := &ValidationResult{
		CyclePaths: make([][]int64, 0),
		Errors:     make([]string, 0),
	}

	cycles := v.detectCycles(v.buildAdjacencyMap(edges))
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles
	for _, cycle := range cycles {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}
	return result
}

// WouldCreateCycle reports whether adding candidate to edges makes an item reachable from itself
func (v *BOMValidator) WouldCreateCycle(edges []ItemEdge, candidate ItemEdge) bool {
	if candidate.ParentItemID == candidate.ChildItemID {
		return true
	}
	adjacencyMap := v.buildAdjacencyMap(edges)

	// the new edge closes a cycle iff the parent is already reachable from the child
	visited := make(map[int64]bool)
	stack := []int64{candidate.ChildItemID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == candidate.ParentItemID {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, adjacencyMap[current]...)
	}
	return false
}

// buildAdjacencyMap creates a map of parent -> children relationships
func (v *BOMValidator) buildAdjacencyMap(edges []ItemEdge) map[int64][]int64 {
	adjacencyMap := make(map[int64][]int64)

	for _, edge := range edges {
		children := adjacencyMap[edge.ParentItemID]

		found := false
		for _, child := range children {
			if child == edge.ChildItemID {
				found = true
				break
			}
		}

		if !found {
			adjacencyMap[edge.ParentItemID] = append(children, edge.ChildItemID)
		}
	}

	return adjacencyMap
}

// detectCycles uses DFS to find cycles in the item graph
func (v *BOMValidator) detectCycles(adjacencyMap map[int64][]int64) [][]int64 {
	visited := make(map[int64]bool)
	recursionStack := make(map[int64]bool)
	cycles := make([][]int64, 0)

	for parent := range adjacencyMap {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *BOMValidator) dfsDetectCycle(
	current int64,
	adjacencyMap map[int64][]int64,
	visited map[int64]bool,
	recursionStack map[int64]bool,
	path []int64,
	cycles *[][]int64,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
		} else if recursionStack[child] {
			for i, item := range path {
				if item == child {
					cycle := make([]int64, 0, len(path)-i+1)
					cycle = append(cycle, path[i:]...)
					cycle = append(cycle, child)
					*cycles = append(*cycles, cycle)
					break
				}
			}
		}
	}

	recursionStack[current] = false
}

func parentKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
