package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/application/dto"
	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// Scenario file names. Every file is optional.
const (
	DivisionsFile        = "divisions.csv"
	WarehousesFile       = "warehouses.csv"
	LocationsFile        = "locations.csv"
	ItemsFile            = "items.csv"
	BOMsFile             = "boms.csv"
	BOMComponentsFile    = "bom_components.csv"
	CurrenciesFile       = "currencies.csv"
	CostTypesFile        = "cost_types.csv"
	ItemCostsFile        = "item_costs.csv"
	PricingScenariosFile = "pricing_scenarios.csv"
	InventoryFile        = "inventory.csv"
)

var (
	divisionHeader  = []string{"code", "name"}
	warehouseHeader = []string{"code", "name", "division_code"}
	locationHeader  = []string{"code", "warehouse_code"}
	itemHeader      = []string{"code", "name", "type", "uom_id"}
	bomHeader       = []string{"item_code", "division_code", "version", "status", "revision"}
	componentHeader = []string{"item_code", "division_code", "version", "component_code", "quantity", "uom_id", "position", "parent_position"}
	currencyHeader  = []string{"code", "name", "is_base"}
	costTypeHeader  = []string{"name", "category"}
	itemCostHeader  = []string{"item_code", "cost_type", "amount", "currency_code"}
	scenarioHeader  = []string{"name", "markup_percentage", "discount_percentage", "include_indirect_costs", "status"}
	inventoryHeader = []string{"item_code", "warehouse_code", "location_code", "lot_number", "quantity"}
)

// Summary counts what a scenario load wrote. OpeningStock holds the inventory rows; they are booked
// through the ledger by the caller so that each gets a journal entry.
type Summary struct {
	Divisions    int
	Warehouses   int
	Locations    int
	Items        int
	BOMs         int
	Components   int
	Currencies   int
	CostTypes    int
	ItemCosts    int
	Scenarios    int
	OpeningStock []dto.AdjustmentRequest
}

// Loader loads master data of a scenario directory into a store
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new CSV loader
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logging.OrNop(logger)}
}

// scenario tracks what has been written so far, keyed by the codes used in the files
type scenario struct {
	divisions  map[string]*entities.Division
	warehouses map[string]*entities.Warehouse
	locations  map[string]*entities.Location
	items      map[string]*entities.Item
	boms       map[string]*entities.BillOfMaterials
	components map[string]*entities.BomComponent
	currencies map[string]*entities.Currency
	costTypes  map[string]*entities.CostType
}

// LoadDir reads every known file of dir and writes its rows in one transaction. Rows refer to each
// other by code, so files are loaded in dependency order.
func (l *Loader) LoadDir(ctx context.Context, dir string, tx repositories.TxManager) (*Summary, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario path %s is not a directory", dir)
	}

	sc := &scenario{
		divisions:  make(map[string]*entities.Division),
		warehouses: make(map[string]*entities.Warehouse),
		locations:  make(map[string]*entities.Location),
		items:      make(map[string]*entities.Item),
		boms:       make(map[string]*entities.BillOfMaterials),
		components: make(map[string]*entities.BomComponent),
		currencies: make(map[string]*entities.Currency),
		costTypes:  make(map[string]*entities.CostType),
	}
	summary := &Summary{}

	steps := []struct {
		file   string
		header []string
		load   func(ctx context.Context, store repositories.Store, row []string) error
	}{
		{DivisionsFile, divisionHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.Divisions++
			return sc.division(ctx, store, row)
		}},
		{WarehousesFile, warehouseHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.Warehouses++
			return sc.warehouse(ctx, store, row)
		}},
		{LocationsFile, locationHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.Locations++
			return sc.location(ctx, store, row)
		}},
		{ItemsFile, itemHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.Items++
			return sc.item(ctx, store, row)
		}},
		{BOMsFile, bomHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.BOMs++
			return sc.bom(ctx, store, row)
		}},
		{BOMComponentsFile, componentHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.Components++
			return sc.component(ctx, store, row)
		}},
		{CurrenciesFile, currencyHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.Currencies++
			return sc.currency(ctx, store, row)
		}},
		{CostTypesFile, costTypeHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.CostTypes++
			return sc.costType(ctx, store, row)
		}},
		{ItemCostsFile, itemCostHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.ItemCosts++
			return sc.itemCost(ctx, store, row)
		}},
		{PricingScenariosFile, scenarioHeader, func(ctx context.Context, store repositories.Store, row []string) error {
			summary.Scenarios++
			return sc.pricingScenario(ctx, store, row)
		}},
		{InventoryFile, inventoryHeader, func(_ context.Context, _ repositories.Store, row []string) error {
			req, err := sc.openingStock(row)
			if err != nil {
				return err
			}
			summary.OpeningStock = append(summary.OpeningStock, req)
			return nil
		}},
	}

	tables := make([][][]string, len(steps))
	for i, step := range steps {
		rows, err := readTable(filepath.Join(dir, step.file), step.header)
		if err != nil {
			return nil, err
		}
		tables[i] = rows
	}

	err = tx.WithTransaction(ctx, func(ctx context.Context, store repositories.Store) error {
		for i, step := range steps {
			for n, row := range tables[i] {
				if err := step.load(ctx, store, row); err != nil {
					return fmt.Errorf("%s row %d: %w", step.file, n+2, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("scenario loaded",
		zap.String("dir", dir),
		zap.Int("divisions", summary.Divisions),
		zap.Int("warehouses", summary.Warehouses),
		zap.Int("items", summary.Items),
		zap.Int("boms", summary.BOMs),
		zap.Int("components", summary.Components),
		zap.Int("item_costs", summary.ItemCosts),
		zap.Int("opening_stock", len(summary.OpeningStock)),
	)
	return summary, nil
}

// readTable returns the data rows of a CSV file, or nothing when the file does not exist
func readTable(filename string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s header mismatch. Expected: %v, Got: %v", filepath.Base(filename), expectedHeader, header)
	}
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", filepath.Base(filename), i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

// validateHeader checks if the CSV header matches expected format
func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.TrimSpace(strings.ToLower(actual[i])) != col {
			return false
		}
	}
	return true
}

func (sc *scenario) division(ctx context.Context, store repositories.Store, row []string) error {
	code := strings.TrimSpace(row[0])
	if code == "" {
		return fmt.Errorf("division code cannot be empty")
	}
	if _, dup := sc.divisions[code]; dup {
		return fmt.Errorf("duplicate division %s", code)
	}
	d := &entities.Division{Code: code, Name: row[1]}
	if err := store.Sites().SaveDivision(ctx, d); err != nil {
		return err
	}
	sc.divisions[code] = d
	return nil
}

func (sc *scenario) warehouse(ctx context.Context, store repositories.Store, row []string) error {
	code := strings.TrimSpace(row[0])
	if code == "" {
		return fmt.Errorf("warehouse code cannot be empty")
	}
	division, ok := sc.divisions[row[2]]
	if !ok {
		return fmt.Errorf("unknown division %q", row[2])
	}
	w := &entities.Warehouse{DivisionID: division.ID, Code: code, Name: row[1]}
	if err := store.Sites().SaveWarehouse(ctx, w); err != nil {
		return err
	}
	sc.warehouses[code] = w
	return nil
}

func (sc *scenario) location(ctx context.Context, store repositories.Store, row []string) error {
	warehouse, ok := sc.warehouses[row[1]]
	if !ok {
		return fmt.Errorf("unknown warehouse %q", row[1])
	}
	loc := &entities.Location{WarehouseID: warehouse.ID, Code: strings.TrimSpace(row[0])}
	if loc.Code == "" {
		return fmt.Errorf("location code cannot be empty")
	}
	if err := store.Sites().SaveLocation(ctx, loc); err != nil {
		return err
	}
	sc.locations[warehouse.Code+"|"+loc.Code] = loc
	return nil
}

func (sc *scenario) item(ctx context.Context, store repositories.Store, row []string) error {
	uomID, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uom_id: %s", row[3])
	}
	item, err := entities.NewItem(strings.TrimSpace(row[0]), row[1], entities.ItemType(strings.ToLower(row[2])), uomID)
	if err != nil {
		return err
	}
	if err := store.Items().SaveItem(ctx, item); err != nil {
		return err
	}
	sc.items[item.Code] = item
	return nil
}

func bomKey(itemCode, divisionCode, version string) string {
	return itemCode + "|" + divisionCode + "|" + version
}

func (sc *scenario) bom(ctx context.Context, store repositories.Store, row []string) error {
	item, ok := sc.items[row[0]]
	if !ok {
		return fmt.Errorf("unknown item %q", row[0])
	}
	division, ok := sc.divisions[row[1]]
	if !ok {
		return fmt.Errorf("unknown division %q", row[1])
	}
	status, err := parseBOMStatus(row[3])
	if err != nil {
		return err
	}
	revision := 0
	if s := strings.TrimSpace(row[4]); s != "" {
		if revision, err = strconv.Atoi(s); err != nil || revision < 0 {
			return fmt.Errorf("invalid revision: %s", row[4])
		}
	}

	key := bomKey(row[0], row[1], row[2])
	if _, dup := sc.boms[key]; dup {
		return fmt.Errorf("duplicate bom %s", key)
	}
	b := &entities.BillOfMaterials{
		ItemID:     item.ID,
		DivisionID: division.ID,
		Status:     status,
		Version:    row[2],
		Revision:   revision,
	}
	if status == entities.BOMActive {
		now := time.Now().UTC()
		b.ActivatedAt = &now
	}
	if err := store.BOMs().SaveBOM(ctx, b); err != nil {
		return err
	}
	sc.boms[key] = b
	return nil
}

// component loads one BOM line. parent_position names an earlier line of the same BOM.
func (sc *scenario) component(ctx context.Context, store repositories.Store, row []string) error {
	key := bomKey(row[0], row[1], row[2])
	b, ok := sc.boms[key]
	if !ok {
		return fmt.Errorf("unknown bom %s", key)
	}
	item, ok := sc.items[row[3]]
	if !ok {
		return fmt.Errorf("unknown component item %q", row[3])
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(row[4]))
	if err != nil {
		return fmt.Errorf("invalid quantity: %s", row[4])
	}
	uomID, err := strconv.ParseInt(strings.TrimSpace(row[5]), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uom_id: %s", row[5])
	}
	position, err := strconv.Atoi(strings.TrimSpace(row[6]))
	if err != nil {
		return fmt.Errorf("invalid position: %s", row[6])
	}

	var parentID *int64
	level := 1
	if p := strings.TrimSpace(row[7]); p != "" {
		parent, ok := sc.components[key+"|"+p]
		if !ok {
			return fmt.Errorf("parent position %s not found above this row", p)
		}
		id := parent.ID
		parentID = &id
		level = parent.LevelNumber + 1
	}

	c, err := entities.NewBomComponent(b.ID, item.ID, qty, uomID, parentID, level, position)
	if err != nil {
		return err
	}
	if err := store.BOMs().SaveComponent(ctx, c); err != nil {
		return err
	}
	sc.components[key+"|"+strconv.Itoa(position)] = c
	return nil
}

func (sc *scenario) currency(ctx context.Context, store repositories.Store, row []string) error {
	isBase, err := parseBool(row[2])
	if err != nil {
		return fmt.Errorf("invalid is_base: %s", row[2])
	}
	c := &entities.Currency{Code: strings.ToUpper(strings.TrimSpace(row[0])), Name: row[1], IsBaseCurrency: isBase}
	if len(c.Code) != 3 {
		return fmt.Errorf("currency code must have 3 letters, got %q", c.Code)
	}
	if err := store.Pricing().SaveCurrency(ctx, c); err != nil {
		return err
	}
	sc.currencies[c.Code] = c
	return nil
}

func (sc *scenario) costType(ctx context.Context, store repositories.Store, row []string) error {
	category := entities.CostCategory(strings.ToLower(strings.TrimSpace(row[1])))
	if !category.Valid() {
		return fmt.Errorf("invalid category: %s (expected: material, labor, direct_overhead, or indirect_overhead)", row[1])
	}
	ct := &entities.CostType{Name: row[0], Category: category}
	if err := store.Pricing().SaveCostType(ctx, ct); err != nil {
		return err
	}
	sc.costTypes[ct.Name] = ct
	return nil
}

func (sc *scenario) itemCost(ctx context.Context, store repositories.Store, row []string) error {
	item, ok := sc.items[row[0]]
	if !ok {
		return fmt.Errorf("unknown item %q", row[0])
	}
	ct, ok := sc.costTypes[row[1]]
	if !ok {
		return fmt.Errorf("unknown cost type %q", row[1])
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil || amount.IsNegative() {
		return fmt.Errorf("invalid amount: %s", row[2])
	}
	currency, ok := sc.currencies[strings.ToUpper(row[3])]
	if !ok {
		return fmt.Errorf("unknown currency %q", row[3])
	}
	return store.Pricing().SaveItemCost(ctx, &entities.ItemCost{
		ItemID:        item.ID,
		CostTypeID:    ct.ID,
		Amount:        amount,
		CurrencyID:    currency.ID,
		EffectiveDate: time.Now().UTC(),
	})
}

func (sc *scenario) pricingScenario(ctx context.Context, store repositories.Store, row []string) error {
	markup, err := decimal.NewFromString(strings.TrimSpace(row[1]))
	if err != nil {
		return fmt.Errorf("invalid markup_percentage: %s", row[1])
	}
	discount, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil {
		return fmt.Errorf("invalid discount_percentage: %s", row[2])
	}
	indirect, err := parseBool(row[3])
	if err != nil {
		return fmt.Errorf("invalid include_indirect_costs: %s", row[3])
	}
	status := strings.TrimSpace(row[4])
	if status == "" {
		status = "active"
	}
	return store.Pricing().SaveScenario(ctx, &entities.PricingScenario{
		Name:                 row[0],
		MarkupPercentage:     markup,
		DiscountPercentage:   discount,
		IncludeIndirectCosts: indirect,
		Status:               status,
	})
}

func (sc *scenario) openingStock(row []string) (dto.AdjustmentRequest, error) {
	item, ok := sc.items[row[0]]
	if !ok {
		return dto.AdjustmentRequest{}, fmt.Errorf("unknown item %q", row[0])
	}
	warehouse, ok := sc.warehouses[row[1]]
	if !ok {
		return dto.AdjustmentRequest{}, fmt.Errorf("unknown warehouse %q", row[1])
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(row[4]))
	if err != nil || !qty.IsPositive() {
		return dto.AdjustmentRequest{}, fmt.Errorf("invalid quantity: %s", row[4])
	}

	req := dto.AdjustmentRequest{
		ItemID:        item.ID,
		WarehouseID:   warehouse.ID,
		Quantity:      qty,
		ReferenceType: entities.RefAdjustment,
		Note:          "opening balance",
	}
	if code := strings.TrimSpace(row[2]); code != "" {
		loc, ok := sc.locations[warehouse.Code+"|"+code]
		if !ok {
			return dto.AdjustmentRequest{}, fmt.Errorf("unknown location %q in warehouse %s", code, warehouse.Code)
		}
		id := loc.ID
		req.LocationID = &id
	}
	if lot := strings.TrimSpace(row[3]); lot != "" {
		req.LotNumber = &lot
	}
	return req, nil
}

func parseBOMStatus(s string) (entities.BOMStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "draft":
		return entities.BOMDraft, nil
	case "active":
		return entities.BOMActive, nil
	case "obsolete":
		return entities.BOMObsolete, nil
	default:
		return entities.BOMDraft, fmt.Errorf("invalid status: %s (expected: draft, active, or obsolete)", s)
	}
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
