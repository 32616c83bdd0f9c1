package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// generateXLSXOutput writes <name>.xlsx with a bold header row. Workbooks are never written to the
// console, so an output directory is required.
func generateXLSXOutput(report Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("xlsx output needs an output directory")
	}

	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	filename, err := outputFile(config, report.Name()+".xlsx")
	if err != nil {
		return err
	}
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

// Workbook renders the report rows on a single sheet named after the report
func Workbook(report Report) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := report.Name()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	rows := report.CSVRows()
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		last, _ := excelize.ColumnNumberToName(len(rows[0]))
		if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
			return nil, err
		}
	}
	return f, nil
}
