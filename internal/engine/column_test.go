package engine

import (
	"testing"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

func headerLine(text string, toks []token.Token, page int, y float64) Line {
	spans := make([]XSpan, len(toks))
	pos := 0
	for i, tk := range toks {
		start := pos
		end := start + len(tk.Text)
		spans[i] = XSpan{Start: float64(start), End: float64(end)}
		pos = end + 1
	}
	return Line{PageIndex: page, Y: y, Text: text, Tokens: toks, XSpans: spans}
}

func TestColumnTrackerDefaultsWhenNoHeaderSeen(t *testing.T) {
	defaults := ColumnModel{MoneyOutRightX: 400, MoneyInRightX: 470, BalanceRightX: 540}
	tr := NewColumnTracker(nil, 8, false, defaults, nil)

	model := tr.Observe(Line{Text: "TESCO STORES 12.50", PageIndex: 0})
	if model.MoneyOutRightX != 400 || model.MoneyInRightX != 470 || model.BalanceRightX != 540 {
		t.Errorf("expected default thresholds, got %+v", model)
	}
}

func TestColumnTrackerUpdatesOnHeaderLine(t *testing.T) {
	defaults := ColumnModel{MoneyOutRightX: 400, MoneyInRightX: 470, BalanceRightX: 540}
	tr := NewColumnTracker([]string{"Paid out", "Paid in", "Balance"}, 8, false, defaults, nil)

	toks := []token.Token{
		{Text: "Date", X0: 0, X1: 30},
		{Text: "Description", X0: 35, X1: 100},
		{Text: "Paid out", X0: 300, X1: 390},
		{Text: "Paid in", X0: 400, X1: 460},
		{Text: "Balance", X0: 470, X1: 530},
	}
	header := headerLine("Date Description Paid out Paid in Balance", toks, 0, 700)

	model := tr.Observe(header)
	if model.MoneyOutRightX != 390 {
		t.Errorf("expected MoneyOutRightX 390 from header geometry, got %v", model.MoneyOutRightX)
	}
	if model.MoneyInRightX != 460 {
		t.Errorf("expected MoneyInRightX 460, got %v", model.MoneyInRightX)
	}
	if model.BalanceRightX != 530 {
		t.Errorf("expected BalanceRightX 530, got %v", model.BalanceRightX)
	}

	next := tr.Observe(Line{Text: "TESCO 12.50", PageIndex: 0})
	if next.MoneyOutRightX != 390 {
		t.Errorf("expected subsequent line to use the new model, got %+v", next)
	}
}

func TestColumnTrackerCarriesModelAcrossPages(t *testing.T) {
	defaults := ColumnModel{MoneyOutRightX: 400, MoneyInRightX: 470, BalanceRightX: 540}
	tr := NewColumnTracker([]string{"Paid out", "Paid in", "Balance"}, 8, false, defaults, nil)

	toks := []token.Token{
		{Text: "Date", X0: 0, X1: 30},
		{Text: "Paid out", X0: 300, X1: 385},
		{Text: "Paid in", X0: 400, X1: 455},
		{Text: "Balance", X0: 470, X1: 525},
	}
	tr.Observe(headerLine("Date Paid out Paid in Balance", toks, 0, 700))

	model := tr.Observe(Line{Text: "row on page 2", PageIndex: 1})
	if model.MoneyOutRightX != 385 {
		t.Errorf("expected model to carry over to the next page, got %+v", model)
	}
}

func TestColumnModelThresholds(t *testing.T) {
	m := ColumnModel{MoneyOutRightX: 400, MoneyInRightX: 460, BalanceRightX: 540}
	outIn, inBalance := m.Thresholds()
	if outIn != 430 {
		t.Errorf("expected outIn midpoint 430, got %v", outIn)
	}
	if inBalance != 500 {
		t.Errorf("expected inBalance midpoint 500, got %v", inBalance)
	}
}
