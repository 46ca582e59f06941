// Package writer exports parse results to CSV for spreadsheet review.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ledgerdesk/statement-parser/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the result's transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result models.ParseResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, result)
}

// Write writes the result's transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, result models.ParseResult) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeHeader {
		if result.Account != nil {
			cw.Write([]string{"# Account", string(*result.Account)})
		}
		if result.Filename != "" {
			cw.Write([]string{"# Statement", result.Filename})
		}
	}

	if err := cw.Write([]string{"Date", "Description", "Amount"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range result.Transactions {
		row := []string{txn.Date, txn.Description, txn.Amount.StringFixed(2)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}
