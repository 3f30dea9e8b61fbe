package writer

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/bank-statement-converter/internal/engine"
)

// XLSXWriter exports a StatementResult to a three-sheet workbook
// (Summary, Transactions, Warnings), grounded in
// MARCEBELE-BCA-Mutasi-PDF-to-Xlsx-converter's excel.go sheet-per-concern
// layout and styling.
type XLSXWriter struct {
	BankName string
}

// WriteToFile builds the workbook and saves it at path.
func (w *XLSXWriter) WriteToFile(path string, result engine.StatementResult) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetAppProps(&excelize.AppProperties{Application: "Bank Statement Converter"})

	f.SetSheetName("Sheet1", "Summary")
	if _, err := f.NewSheet("Transactions"); err != nil {
		return fmt.Errorf("writer: creating transactions sheet: %w", err)
	}
	if _, err := f.NewSheet("Warnings"); err != nil {
		return fmt.Errorf("writer: creating warnings sheet: %w", err)
	}

	if err := w.writeSummarySheet(f, result); err != nil {
		return err
	}
	if err := w.writeTransactionsSheet(f, result); err != nil {
		return err
	}
	if err := w.writeWarningsSheet(f, result); err != nil {
		return err
	}

	f.SetActiveSheet(1)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writer: saving %q: %w", path, err)
	}
	return nil
}

func (w *XLSXWriter) writeSummarySheet(f *excelize.File, result engine.StatementResult) error {
	sheet := "Summary"
	headers := []string{"Bank", "Opening Balance", "Closing Balance", "Periods", "Transactions", "Confidence", "Partial"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	row := []interface{}{
		w.BankName,
		balanceOrBlank(result.OpeningBalance, result.HasOpening),
		balanceOrBlank(result.ClosingBalance, result.HasClosing),
		len(result.Periods),
		len(result.Transactions),
		result.ConfidenceOverall,
		result.Partial,
	}
	for i, v := range row {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, v)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#70AD47"}, Pattern: 1},
	})
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)
	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}
	return nil
}

func (w *XLSXWriter) writeTransactionsSheet(f *excelize.File, result engine.StatementResult) error {
	sheet := "Transactions"
	headers := []string{"Date", "Description", "Type", "Money In", "Money Out", "Balance", "Confidence"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, tx := range result.Transactions {
		row := i + 2
		if tx.HasDate {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			f.SetCellValue(sheet, cell, tx.Date.Format("2006-01-02"))
		}
		cell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheet, cell, tx.Description)
		cell, _ = excelize.CoordinatesToCellName(3, row)
		f.SetCellValue(sheet, cell, string(tx.Type))
		if !tx.MoneyIn.IsZero() {
			cell, _ = excelize.CoordinatesToCellName(4, row)
			v, _ := tx.MoneyIn.Float64()
			f.SetCellValue(sheet, cell, v)
		}
		if !tx.MoneyOut.IsZero() {
			cell, _ = excelize.CoordinatesToCellName(5, row)
			v, _ := tx.MoneyOut.Float64()
			f.SetCellValue(sheet, cell, v)
		}
		if tx.HasBalance {
			cell, _ = excelize.CoordinatesToCellName(6, row)
			v, _ := tx.Balance.Float64()
			f.SetCellValue(sheet, cell, v)
		}
		cell, _ = excelize.CoordinatesToCellName(7, row)
		f.SetCellValue(sheet, cell, tx.Confidence)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheet, "A1", "G1", headerStyle)

	numStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	if n := len(result.Transactions); n > 0 {
		lastRow := n + 1
		f.SetCellStyle(sheet, "D2", fmt.Sprintf("F%d", lastRow), numStyle)
		f.AutoFilter(sheet, fmt.Sprintf("A1:G%d", lastRow), []excelize.AutoFilterOptions{})
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 50)
	f.SetColWidth(sheet, "C", "C", 16)
	f.SetColWidth(sheet, "D", "F", 14)
	f.SetColWidth(sheet, "G", "G", 11)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func (w *XLSXWriter) writeWarningsSheet(f *excelize.File, result engine.StatementResult) error {
	sheet := "Warnings"
	headers := []string{"Kind", "Message", "Transaction Index", "Period Index"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, warn := range result.Warnings {
		row := i + 2
		values := []interface{}{string(warn.Kind), warn.Message, warn.TransactionIndex, warn.PeriodIndex}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
	f.SetColWidth(sheet, "B", "B", 70)
	return nil
}

func balanceOrBlank(v interface{ Float64() (float64, bool) }, has bool) interface{} {
	if !has {
		return ""
	}
	f, _ := v.Float64()
	return f
}
