package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RequirementLine is one exploded material with its item resolved
type RequirementLine struct {
	ItemCode        string          `json:"item_code"`
	ItemName        string          `json:"item_name"`
	PlannedQuantity decimal.Decimal `json:"planned_quantity"`
	UomID           int64           `json:"uom_id"`
	LevelNumber     int             `json:"level_number"`
	Position        int             `json:"position"`
}

// ExplosionReport lists the materials needed to build Quantity of an item
type ExplosionReport struct {
	ItemCode     string            `json:"item_code"`
	DivisionID   int64             `json:"division_id"`
	BomID        int64             `json:"bom_id"`
	BomVersion   string            `json:"bom_version"`
	Revision     int               `json:"revision"`
	Quantity     decimal.Decimal   `json:"quantity"`
	Requirements []RequirementLine `json:"requirements"`
}

func (r *ExplosionReport) Name() string { return "explosion" }

func (r *ExplosionReport) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "📊 BOM Explosion\n")
	fmt.Fprintf(w, "================\n\n")
	fmt.Fprintf(w, "Item: %s x %s\n", r.ItemCode, r.Quantity)
	fmt.Fprintf(w, "BOM: %d (version %s, revision %d, division %d)\n\n", r.BomID, r.BomVersion, r.Revision, r.DivisionID)

	fmt.Fprintf(w, "%-5s %-4s %-20s %-30s %14s %-5s\n", "Level", "Pos", "Item", "Name", "Quantity", "UoM")
	fmt.Fprintf(w, "%-5s %-4s %-20s %-30s %14s %-5s\n", "-----", "----", strings.Repeat("-", 20), strings.Repeat("-", 30), strings.Repeat("-", 14), "-----")
	for _, line := range r.Requirements {
		fmt.Fprintf(w, "%-5d %-4d %-20s %-30s %14s %-5d\n",
			line.LevelNumber,
			line.Position,
			indent(line.LevelNumber)+line.ItemCode,
			truncate(line.ItemName, 30),
			line.PlannedQuantity.String(),
			line.UomID)
	}
	fmt.Fprintln(w)
	return nil
}

func (r *ExplosionReport) CSVRows() [][]string {
	rows := [][]string{{"level", "position", "item_code", "item_name", "planned_quantity", "uom_id"}}
	for _, line := range r.Requirements {
		rows = append(rows, []string{
			strconv.Itoa(line.LevelNumber),
			strconv.Itoa(line.Position),
			line.ItemCode,
			line.ItemName,
			line.PlannedQuantity.String(),
			strconv.FormatInt(line.UomID, 10),
		})
	}
	return rows
}

// PriceReport is the breakdown of one price calculation
type PriceReport struct {
	ItemCode         string          `json:"item_code"`
	ScenarioName     string          `json:"scenario_name"`
	CurrencyCode     string          `json:"currency_code"`
	BaseCost         decimal.Decimal `json:"base_cost"`
	MarkupAmount     decimal.Decimal `json:"markup_amount"`
	PriceAfterMarkup decimal.Decimal `json:"price_after_markup"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	FinalPrice       decimal.Decimal `json:"final_price"`
}

func (r *PriceReport) Name() string { return "price" }

func (r *PriceReport) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "💰 Price of %s (%s)\n", r.ItemCode, r.ScenarioName)
	fmt.Fprintf(w, "  %-18s %14s %s\n", "Base cost", r.BaseCost.StringFixed(2), r.CurrencyCode)
	fmt.Fprintf(w, "  %-18s %14s\n", "+ Markup", r.MarkupAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-18s %14s\n", "= After markup", r.PriceAfterMarkup.StringFixed(2))
	fmt.Fprintf(w, "  %-18s %14s\n", "- Discount", r.DiscountAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-18s %14s %s\n", "= Final price", r.FinalPrice.StringFixed(2), r.CurrencyCode)
	return nil
}

func (r *PriceReport) CSVRows() [][]string {
	return [][]string{
		{"item_code", "scenario", "currency", "base_cost", "markup_amount", "price_after_markup", "discount_amount", "final_price"},
		{r.ItemCode, r.ScenarioName, r.CurrencyCode, r.BaseCost.String(), r.MarkupAmount.String(),
			r.PriceAfterMarkup.String(), r.DiscountAmount.String(), r.FinalPrice.String()},
	}
}

// SettledLine is one transferred item with the resulting on-hand quantities
type SettledLine struct {
	ItemCode          string          `json:"item_code"`
	Quantity          decimal.Decimal `json:"quantity"`
	SourceOnHand      decimal.Decimal `json:"source_on_hand"`
	DestinationOnHand decimal.Decimal `json:"destination_on_hand"`
}

// SettlementReport describes a processed inter-division transfer
type SettlementReport struct {
	TransferNumber string        `json:"transfer_number"`
	FromDivision   string        `json:"from_division"`
	ToDivision     string        `json:"to_division"`
	Status         string        `json:"status"`
	Lines          []SettledLine `json:"lines"`
}

func (r *SettlementReport) Name() string { return "settlement" }

func (r *SettlementReport) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "🚚 Transfer %s: %s -> %s (%s)\n", r.TransferNumber, r.FromDivision, r.ToDivision, r.Status)
	fmt.Fprintf(w, "%-20s %12s %14s %14s\n", "Item", "Quantity", "Source", "Destination")
	fmt.Fprintf(w, "%-20s %12s %14s %14s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 14), strings.Repeat("-", 14))
	for _, line := range r.Lines {
		fmt.Fprintf(w, "%-20s %12s %14s %14s\n", line.ItemCode, line.Quantity, line.SourceOnHand, line.DestinationOnHand)
	}
	return nil
}

func (r *SettlementReport) CSVRows() [][]string {
	rows := [][]string{{"transfer_number", "item_code", "quantity", "source_on_hand", "destination_on_hand"}}
	for _, line := range r.Lines {
		rows = append(rows, []string{r.TransferNumber, line.ItemCode, line.Quantity.String(), line.SourceOnHand.String(), line.DestinationOnHand.String()})
	}
	return rows
}

func indent(level int) string {
	if level <= 1 {
		return ""
	}
	return strings.Repeat("  ", level-1)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
