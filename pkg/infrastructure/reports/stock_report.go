package reports

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/vsinha/divmrp/pkg/domain/repositories"
)

const stockFrom = `
	FROM inventory_records r
	JOIN warehouses w ON w.id = r.warehouse_id
	JOIN items i ON i.id = r.item_id`

const stockColumns = `
	SELECT r.id AS record_id, r.item_id, i.code AS item_code, i.name AS item_name,
	       w.division_id, r.warehouse_id, w.code AS warehouse_code, r.location_id, r.lot_number,
	       r.quantity_on_hand, r.quantity_allocated, r.quantity_available`

// StockReport reads stock levels with plain SQL next to the GORM store
type StockReport struct {
	DB *sqlx.DB
}

func NewStockReport(db *sqlx.DB) *StockReport {
	return &StockReport{DB: db}
}

// NewStockReportFromSQL wraps an existing pool, usually the one opened by GORM
func NewStockReportFromSQL(db *sql.DB) *StockReport {
	return NewStockReport(sqlx.NewDb(db, "pgx"))
}

// stockWhere builds the named-parameter filter of the report
func stockWhere(f repositories.StockFilter) (string, map[string]interface{}) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.DivisionID != 0 {
		conditions = append(conditions, "w.division_id = :division_id")
		args["division_id"] = f.DivisionID
	}
	if f.WarehouseID != 0 {
		conditions = append(conditions, "r.warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.ItemID != 0 {
		conditions = append(conditions, "r.item_id = :item_id")
		args["item_id"] = f.ItemID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}
	return whereClause, args
}

// StockLevels returns one page of ledger records with the total count and on-hand sum of the
// whole filtered set
func (r *StockReport) StockLevels(ctx context.Context, filter repositories.StockFilter) (*repositories.StockPage, error) {
	filter = filter.Normalize()
	whereClause, args := stockWhere(filter)

	var totals struct {
		Count  int64               `db:"count"`
		OnHand decimal.NullDecimal `db:"on_hand"`
	}
	query, qargs, err := sqlx.Named("SELECT count(*) AS count, sum(r.quantity_on_hand) AS on_hand"+stockFrom+whereClause, args)
	if err != nil {
		return nil, fmt.Errorf("bind stock totals: %w", err)
	}
	if err := r.DB.GetContext(ctx, &totals, r.DB.Rebind(query), qargs...); err != nil {
		return nil, fmt.Errorf("query stock totals: %w", err)
	}

	page := &repositories.StockPage{
		Rows:        []repositories.StockRow{},
		Total:       totals.Count,
		TotalOnHand: decimal.Zero,
		Page:        filter.Page,
		Size:        filter.Size,
	}
	if totals.OnHand.Valid {
		page.TotalOnHand = totals.OnHand.Decimal
	}

	listQuery := stockColumns + stockFrom + whereClause +
		fmt.Sprintf(" ORDER BY w.division_id, r.warehouse_id, i.code, r.id LIMIT %d OFFSET %d", filter.Size, filter.Offset())
	query, qargs, err = sqlx.Named(listQuery, args)
	if err != nil {
		return nil, fmt.Errorf("bind stock rows: %w", err)
	}
	if err := r.DB.SelectContext(ctx, &page.Rows, r.DB.Rebind(query), qargs...); err != nil {
		return nil, fmt.Errorf("query stock rows: %w", err)
	}
	return page, nil
}
