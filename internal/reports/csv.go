package reports

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/aurumpos/aurumpos/internal/ledger"
)

// WriteStockReportCSV serialises the stock position to CSV.
func WriteStockReportCSV(w io.Writer, report StockReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Category", "Metal", "Products", "Quantity", "Weight (g)", "Metal Value"}); err != nil {
		return err
	}
	for _, c := range report.Categories {
		if err := writer.Write([]string{
			c.CategoryName,
			string(c.Metal),
			strconv.Itoa(c.Products),
			formatFloat(c.Quantity),
			formatFloat(c.Weight),
			formatFloat(c.MetalValue),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{
		"Total", "", "",
		formatFloat(report.TotalQuantity),
		formatFloat(report.TotalWeight),
		formatFloat(report.TotalMetalValue),
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteTransactionsCSV serialises ledger entries to CSV, newest first.
func WriteTransactionsCSV(w io.Writer, txns []ledger.Transaction) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Product", "Type", "Reason", "Quantity", "Weight (g)"}); err != nil {
		return err
	}
	for _, txn := range txns {
		if err := writer.Write([]string{
			txn.Date.Format("2006-01-02 15:04:05"),
			txn.ProductID,
			string(txn.Type),
			string(txn.Reason),
			formatFloat(txn.Quantity),
			formatFloat(txn.Weight),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
