// Package writer renders parsed transactions for export.
package writer

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/ledgerlens/statement-extractor/internal/models"
)

// csvRow is the flat export shape. Dates render as yyyy-mm-dd and amounts
// with two decimals so spreadsheets import them without coaxing.
type csvRow struct {
	Date     string `csv:"Date"`
	Details  string `csv:"Details"`
	Amount   string `csv:"Amount"`
	Type     string `csv:"Type"`
	Category string `csv:"Category"`
	Bank     string `csv:"Bank"`
	Kind     string `csv:"Statement Type"`
}

// WriteCSV streams transactions as CSV, header included.
func WriteCSV(w io.Writer, txns []models.ParsedTransaction) error {
	rows := make([]csvRow, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, csvRow{
			Date:     t.Date.Format(time.DateOnly),
			Details:  t.Details,
			Amount:   fmt.Sprintf("%.2f", t.Amount),
			Type:     string(t.Type),
			Category: t.Category,
			Bank:     string(t.Bank),
			Kind:     string(t.Kind),
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
