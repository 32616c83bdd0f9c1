package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/domain/repositories"
)

// StockLevels serves the stock report from the committed state
func (s *Store) StockLevels(_ context.Context, filter repositories.StockFilter) (*repositories.StockPage, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	rows := make([]repositories.StockRow, 0)
	for _, rec := range s.state.records {
		wh, ok := s.state.warehouses[rec.WarehouseID]
		if !ok {
			continue
		}
		if filter.DivisionID != 0 && wh.DivisionID != filter.DivisionID {
			continue
		}
		if filter.WarehouseID != 0 && rec.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.ItemID != 0 && rec.ItemID != filter.ItemID {
			continue
		}
		row := repositories.StockRow{
			RecordID:          rec.ID,
			ItemID:            rec.ItemID,
			DivisionID:        wh.DivisionID,
			WarehouseID:       wh.ID,
			WarehouseCode:     wh.Code,
			LocationID:        copyInt64(rec.LocationID),
			LotNumber:         copyString(rec.LotNumber),
			QuantityOnHand:    rec.QuantityOnHand,
			QuantityAllocated: rec.QuantityAllocated,
			QuantityAvailable: rec.QuantityAvailable,
		}
		if item, ok := s.state.items[rec.ItemID]; ok {
			row.ItemCode = item.Code
			row.ItemName = item.Name
		}
		rows = append(rows, row)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ItemID != rows[j].ItemID {
			return rows[i].ItemID < rows[j].ItemID
		}
		if rows[i].WarehouseID != rows[j].WarehouseID {
			return rows[i].WarehouseID < rows[j].WarehouseID
		}
		return rows[i].RecordID < rows[j].RecordID
	})

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.QuantityOnHand)
	}

	page := &repositories.StockPage{
		Rows:        []repositories.StockRow{},
		Total:       int64(len(rows)),
		TotalOnHand: total,
		Page:        filter.Page,
		Size:        filter.Size,
	}
	if start := filter.Offset(); start < len(rows) {
		end := start + filter.Size
		if end > len(rows) {
			end = len(rows)
		}
		page.Rows = rows[start:end]
	}
	return page, nil
}
