package memory

import "github.com/vsinha/divmrp/pkg/domain/entities"

type state struct {
	seq map[string]int64

	items      map[int64]*entities.Item
	divisions  map[int64]*entities.Division
	warehouses map[int64]*entities.Warehouse
	locations  map[int64]*entities.Location

	boms       map[int64]*entities.BillOfMaterials
	components map[int64]*entities.BomComponent

	records   map[int64]*entities.InventoryRecord
	movements []*entities.InventoryMovement

	orders    map[int64]*entities.ManufacturingOrder
	transfers map[int64]*entities.InterDivisionTransfer

	currencies map[int64]*entities.Currency
	costTypes  map[int64]*entities.CostType
	itemCosts  map[int64]*entities.ItemCost
	scenarios  map[int64]*entities.PricingScenario
	pricings   map[int64]*entities.ItemPricing
}

func newState() *state {
	return &state{
		seq:        make(map[string]int64),
		items:      make(map[int64]*entities.Item),
		divisions:  make(map[int64]*entities.Division),
		warehouses: make(map[int64]*entities.Warehouse),
		locations:  make(map[int64]*entities.Location),
		boms:       make(map[int64]*entities.BillOfMaterials),
		components: make(map[int64]*entities.BomComponent),
		records:    make(map[int64]*entities.InventoryRecord),
		orders:     make(map[int64]*entities.ManufacturingOrder),
		transfers:  make(map[int64]*entities.InterDivisionTransfer),
		currencies: make(map[int64]*entities.Currency),
		costTypes:  make(map[int64]*entities.CostType),
		itemCosts:  make(map[int64]*entities.ItemCost),
		scenarios:  make(map[int64]*entities.PricingScenario),
		pricings:   make(map[int64]*entities.ItemPricing),
	}
}

// nextID returns the id for a new row, or keeps a caller supplied id and advances the sequence past it
func (s *state) nextID(table string, requested int64) int64 {
	if requested > 0 {
		if requested > s.seq[table] {
			s.seq[table] = requested
		}
		return requested
	}
	s.seq[table]++
	return s.seq[table]
}

func (s *state) clone() *state {
	c := &state{
		seq:        make(map[string]int64, len(s.seq)),
		items:      cloneMap(s.items, copyItem),
		divisions:  cloneMap(s.divisions, copyDivision),
		warehouses: cloneMap(s.warehouses, copyWarehouse),
		locations:  cloneMap(s.locations, copyLocation),
		boms:       cloneMap(s.boms, copyBOM),
		components: cloneMap(s.components, copyComponent),
		records:    cloneMap(s.records, copyRecord),
		movements:  make([]*entities.InventoryMovement, len(s.movements)),
		orders:     cloneMap(s.orders, copyOrder),
		transfers:  cloneMap(s.transfers, copyTransfer),
		currencies: cloneMap(s.currencies, copyCurrency),
		costTypes:  cloneMap(s.costTypes, copyCostType),
		itemCosts:  cloneMap(s.itemCosts, copyItemCost),
		scenarios:  cloneMap(s.scenarios, copyScenario),
		pricings:   cloneMap(s.pricings, copyPricing),
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	// movements are append-only, so sharing the rows is safe
	copy(c.movements, s.movements)
	return c
}

func cloneMap[T any](m map[int64]*T, cp func(*T) *T) map[int64]*T {
	out := make(map[int64]*T, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

func copyItem(v *entities.Item) *entities.Item {
	c := *v
	return &c
}

func copyDivision(v *entities.Division) *entities.Division {
	c := *v
	return &c
}

func copyWarehouse(v *entities.Warehouse) *entities.Warehouse {
	c := *v
	return &c
}

func copyLocation(v *entities.Location) *entities.Location {
	c := *v
	return &c
}

func copyCurrency(v *entities.Currency) *entities.Currency {
	c := *v
	return &c
}

func copyCostType(v *entities.CostType) *entities.CostType {
	c := *v
	return &c
}

func copyScenario(v *entities.PricingScenario) *entities.PricingScenario {
	c := *v
	return &c
}

func copyPricing(v *entities.ItemPricing) *entities.ItemPricing {
	c := *v
	return &c
}

func copyItemCost(v *entities.ItemCost) *entities.ItemCost {
	c := *v
	c.CostType = nil
	return &c
}

func copyBOM(v *entities.BillOfMaterials) *entities.BillOfMaterials {
	c := *v
	c.ActivatedAt = copyTime(v.ActivatedAt)
	c.Components = nil
	return &c
}

func copyComponent(v *entities.BomComponent) *entities.BomComponent {
	c := *v
	c.ParentComponentID = copyInt64(v.ParentComponentID)
	return &c
}

func copyRecord(v *entities.InventoryRecord) *entities.InventoryRecord {
	c := *v
	c.LocationID = copyInt64(v.LocationID)
	c.LotNumber = copyString(v.LotNumber)
	return &c
}

func copyMovement(v *entities.InventoryMovement) *entities.InventoryMovement {
	c := *v
	c.LocationID = copyInt64(v.LocationID)
	c.LotNumber = copyString(v.LotNumber)
	return &c
}

func copyOrder(v *entities.ManufacturingOrder) *entities.ManufacturingOrder {
	c := *v
	c.BomID = copyInt64(v.BomID)
	c.PlannedStart = copyTime(v.PlannedStart)
	c.PlannedEnd = copyTime(v.PlannedEnd)
	c.Materials = make([]entities.ManufacturingOrderMaterial, len(v.Materials))
	for i, m := range v.Materials {
		m.BomComponentID = copyInt64(m.BomComponentID)
		m.LocationID = copyInt64(m.LocationID)
		c.Materials[i] = m
	}
	c.Operations = append([]entities.ManufacturingOrderOperation(nil), v.Operations...)
	return &c
}

func copyTransfer(v *entities.InterDivisionTransfer) *entities.InterDivisionTransfer {
	c := *v
	c.CompletedAt = copyTime(v.CompletedAt)
	c.Items = make([]entities.InterDivisionTransferItem, len(v.Items))
	for i, it := range v.Items {
		it.FromLocationID = copyInt64(it.FromLocationID)
		it.ToLocationID = copyInt64(it.ToLocationID)
		it.LotNumber = copyString(it.LotNumber)
		c.Items[i] = it
	}
	return &c
}
