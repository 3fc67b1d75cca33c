package reports

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const stockSheet = "Stock Report"

// WriteStockReportXLSX renders the stock position as a spreadsheet.
func WriteStockReportXLSX(w io.Writer, report StockReport) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(stockSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	header := []any{"Category", "Metal", "Products", "Quantity", "Weight (g)", "Metal Value"}
	if err := f.SetSheetRow(stockSheet, "A1", &header); err != nil {
		return err
	}
	row := 2
	for _, c := range report.Categories {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []any{c.CategoryName, string(c.Metal), c.Products, c.Quantity, c.Weight, c.MetalValue}
		if err := f.SetSheetRow(stockSheet, cell, &values); err != nil {
			return err
		}
		row++
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	totals := []any{"Total", "", "", report.TotalQuantity, report.TotalWeight, report.TotalMetalValue}
	if err := f.SetSheetRow(stockSheet, cell, &totals); err != nil {
		return err
	}

	meta := []any{"Gold Rate", report.GoldRate, "Silver Rate", report.SilverRate, "Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")}
	cell, err = excelize.CoordinatesToCellName(1, row+2)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(stockSheet, cell, &meta); err != nil {
		return err
	}

	return f.Write(w)
}
