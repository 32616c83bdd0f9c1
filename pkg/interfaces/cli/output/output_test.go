package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func sampleExplosion() *ExplosionReport {
	return &ExplosionReport{
		ItemCode:   "SHT-OX-M",
		DivisionID: 2,
		BomID:      3,
		BomVersion: "v2",
		Revision:   2,
		Quantity:   decimal.NewFromInt(10),
		Requirements: []RequirementLine{
			{ItemCode: "FAB-POP-150", ItemName: "Poplin fabric", PlannedQuantity: decimal.NewFromInt(25), UomID: 1, LevelNumber: 1, Position: 1},
			{ItemCode: "THR-POL-120", ItemName: "Polyester thread", PlannedQuantity: decimal.RequireFromString("0.2"), UomID: 1, LevelNumber: 2, Position: 3},
		},
	}
}

func TestGenerate_Formats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{"text", func(t *testing.T, out string) {
			if !strings.Contains(out, "SHT-OX-M x 10") || !strings.Contains(out, "  THR-POL-120") {
				t.Errorf("Unexpected text output:\n%s", out)
			}
		}},
		{"json", func(t *testing.T, out string) {
			var decoded ExplosionReport
			if err := json.Unmarshal([]byte(out), &decoded); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if len(decoded.Requirements) != 2 || !decoded.Requirements[0].PlannedQuantity.Equal(decimal.NewFromInt(25)) {
				t.Errorf("Unexpected decoded report %+v", decoded)
			}
		}},
		{"csv", func(t *testing.T, out string) {
			lines := strings.Split(strings.TrimSpace(out), "\n")
			if len(lines) != 3 || lines[0] != "level,position,item_code,item_name,planned_quantity,uom_id" {
				t.Errorf("Unexpected CSV output:\n%s", out)
			}
			if lines[2] != "2,3,THR-POL-120,Polyester thread,0.2,1" {
				t.Errorf("Unexpected CSV row %q", lines[2])
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Generate(sampleExplosion(), Config{Format: tt.format, Out: &buf}); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	if err := Generate(sampleExplosion(), Config{Format: "xml", Out: &bytes.Buffer{}}); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestGenerate_WritesToOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	var buf bytes.Buffer

	report := &PriceReport{
		ItemCode:         "SHT-OX-M",
		ScenarioName:     "Standard",
		CurrencyCode:     "USD",
		BaseCost:         decimal.NewFromInt(100),
		MarkupAmount:     decimal.NewFromInt(20),
		PriceAfterMarkup: decimal.NewFromInt(120),
		DiscountAmount:   decimal.NewFromInt(12),
		FinalPrice:       decimal.NewFromInt(108),
	}
	if err := Generate(report, Config{Format: "json", OutputDir: dir, Out: &buf}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected nothing on the console without verbose, got %q", buf.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "price.json"))
	if err != nil {
		t.Fatalf("Expected price.json: %v", err)
	}
	if !strings.Contains(string(data), `"final_price": "108"`) {
		t.Errorf("Unexpected file content %s", data)
	}
}

func TestPriceReport_Text(t *testing.T) {
	var buf bytes.Buffer
	report := &PriceReport{ItemCode: "SHT", ScenarioName: "Lean", CurrencyCode: "EUR", FinalPrice: decimal.RequireFromString("97.2")}
	if err := report.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "97.20 EUR") {
		t.Errorf("Expected fixed two-place final price, got:\n%s", buf.String())
	}
}

func TestGenerate_XLSX(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(sampleExplosion(), Config{Format: "xlsx", OutputDir: dir, Out: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, "explosion.xlsx"))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("explosion")
	if err != nil {
		t.Fatalf("Failed to read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(rows))
	}
	if got, _ := f.GetCellValue("explosion", "C2"); got != "FAB-POP-150" {
		t.Errorf("Expected FAB-POP-150 in C2, got %q", got)
	}
	if got, _ := f.GetCellValue("explosion", "E3"); got != "0.2" {
		t.Errorf("Expected planned quantity 0.2 in E3, got %q", got)
	}
}

func TestGenerate_XLSXNeedsOutputDir(t *testing.T) {
	if err := Generate(sampleExplosion(), Config{Format: "xlsx", Out: &bytes.Buffer{}}); err == nil {
		t.Error("Expected an error without an output directory")
	}
}
