// Package writer exports an engine.StatementResult to the CLI/API
// output formats: CSV, XLSX, and JSON.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-statement-converter/internal/engine"
)

// CSVWriter writes a StatementResult to CSV format, grounded in the
// teacher's CSVWriter shape (optional metadata header rows followed by
// one row per transaction).
type CSVWriter struct {
	IncludeHeader bool
	BankName      string
}

// WriteToFile writes a StatementResult to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result engine.StatementResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: creating %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, result)
}

// Write writes a StatementResult in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, result engine.StatementResult) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeHeader {
		if w.BankName != "" {
			cw.Write([]string{"# Bank", w.BankName})
		}
		if result.HasOpening {
			cw.Write([]string{"# Opening Balance", result.OpeningBalance.StringFixed(2)})
		}
		if result.HasClosing {
			cw.Write([]string{"# Closing Balance", result.ClosingBalance.StringFixed(2)})
		}
		cw.Write([]string{"# Confidence", fmt.Sprintf("%d", result.ConfidenceOverall)})
	}

	header := []string{"Date", "Description", "Type", "Money In", "Money Out", "Balance", "Confidence"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writer: writing csv header: %w", err)
	}

	for _, tx := range result.Transactions {
		row := []string{
			formatDate(tx),
			tx.Description,
			string(tx.Type),
			formatDecimalOrBlank(tx.MoneyIn),
			formatDecimalOrBlank(tx.MoneyOut),
			formatBalance(tx),
			fmt.Sprintf("%d", tx.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writer: writing csv row: %w", err)
		}
	}

	return nil
}

func formatDate(tx engine.Transaction) string {
	if !tx.HasDate {
		return ""
	}
	return tx.Date.Format("2006-01-02")
}

func formatBalance(tx engine.Transaction) string {
	if !tx.HasBalance {
		return ""
	}
	return tx.Balance.StringFixed(2)
}

func formatDecimalOrBlank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}
