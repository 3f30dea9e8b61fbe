package writer

import (
	"encoding/json"
	"io"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-statement-converter/internal/engine"
)

// jsonTransaction mirrors the teacher's ConvertResponse wire shape: a
// flat, JSON-friendly projection of engine.Transaction that never
// exposes decimal.Decimal's internal representation directly.
type jsonTransaction struct {
	Date        string          `json:"date,omitempty"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	MoneyIn     decimal.Decimal `json:"moneyIn"`
	MoneyOut    decimal.Decimal `json:"moneyOut"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Confidence  int             `json:"confidence"`
}

type jsonPeriod struct {
	Index               int              `json:"index"`
	OpeningBalance      *decimal.Decimal `json:"openingBalance,omitempty"`
	ClosingBalance      *decimal.Decimal `json:"closingBalance,omitempty"`
	TransactionCount    int              `json:"transactionCount"`
	Reconciled          bool             `json:"reconciled"`
	CascadeRecalculated bool             `json:"cascadeRecalculated"`
}

type jsonWarning struct {
	Kind             string `json:"kind"`
	Message          string `json:"message"`
	TransactionIndex int    `json:"transactionIndex"`
	PeriodIndex      int    `json:"periodIndex"`
}

// JSONResult is the JSON export of a StatementResult.
type JSONResult struct {
	Success           bool             `json:"success"`
	Partial           bool             `json:"partial"`
	ConfidenceOverall int              `json:"confidenceOverall"`
	OpeningBalance    *decimal.Decimal `json:"openingBalance,omitempty"`
	ClosingBalance    *decimal.Decimal `json:"closingBalance,omitempty"`
	Transactions      []jsonTransaction `json:"transactions"`
	Periods           []jsonPeriod      `json:"periods"`
	Warnings          []jsonWarning     `json:"warnings"`
}

// ToJSONResult projects an engine.StatementResult into its wire shape.
func ToJSONResult(result engine.StatementResult) JSONResult {
	out := JSONResult{
		Success:           result.Success,
		Partial:           result.Partial,
		ConfidenceOverall: result.ConfidenceOverall,
	}
	if result.HasOpening {
		out.OpeningBalance = &result.OpeningBalance
	}
	if result.HasClosing {
		out.ClosingBalance = &result.ClosingBalance
	}
	for _, tx := range result.Transactions {
		jt := jsonTransaction{
			Description: tx.Description,
			Type:        string(tx.Type),
			MoneyIn:     tx.MoneyIn,
			MoneyOut:    tx.MoneyOut,
			Confidence:  tx.Confidence,
		}
		if tx.HasDate {
			jt.Date = tx.Date.Format("2006-01-02")
		}
		if tx.HasBalance {
			bal := tx.Balance
			jt.Balance = &bal
		}
		out.Transactions = append(out.Transactions, jt)
	}
	for _, p := range result.Periods {
		jp := jsonPeriod{
			Index:            p.Index,
			TransactionCount: len(p.Transactions),
			Reconciled:       p.Reconciled,
			CascadeRecalculated: p.CascadeRecalculated,
		}
		if p.HasOpeningBalance {
			ob := p.OpeningBalance
			jp.OpeningBalance = &ob
		}
		if p.HasClosingBalance {
			cb := p.ClosingBalance
			jp.ClosingBalance = &cb
		}
		out.Periods = append(out.Periods, jp)
	}
	for _, w := range result.Warnings {
		out.Warnings = append(out.Warnings, jsonWarning{
			Kind:             string(w.Kind),
			Message:          w.Message,
			TransactionIndex: w.TransactionIndex,
			PeriodIndex:      w.PeriodIndex,
		})
	}
	return out
}

// WriteJSON marshals a StatementResult as indented JSON to out.
func WriteJSON(out io.Writer, result engine.StatementResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ToJSONResult(result))
}
