package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

func lineFromText(text string) Line {
	return Line{Text: text, Tokens: []token.Token{{Text: text, X0: 0, X1: float64(len(text)) * defaultAvgCharWidth}}}
}

func TestAmountExtractorFindsAllAmounts(t *testing.T) {
	e := NewAmountExtractor(nil)
	line := lineFromText("TESCO STORES     12.50               987.50")
	amounts := e.Extract(line)

	if len(amounts) != 2 {
		t.Fatalf("expected 2 amounts, got %d", len(amounts))
	}
	if !amounts[0].Value.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("first amount: got %s", amounts[0].Value)
	}
	if !amounts[1].Value.Equal(decimal.RequireFromString("987.50")) {
		t.Errorf("second amount: got %s", amounts[1].Value)
	}
}

func TestAmountExtractorHandlesThousandsSeparatorAndSign(t *testing.T) {
	e := NewAmountExtractor(nil)
	line := lineFromText("TRANSFER -1,234.56 8,765.44")
	amounts := e.Extract(line)

	if len(amounts) != 2 {
		t.Fatalf("expected 2 amounts, got %d", len(amounts))
	}
	if !amounts[0].Value.Equal(decimal.RequireFromString("-1234.56")) {
		t.Errorf("got %s, want -1234.56", amounts[0].Value)
	}
	if !amounts[1].Value.Equal(decimal.RequireFromString("8765.44")) {
		t.Errorf("got %s, want 8765.44", amounts[1].Value)
	}
}

func TestAmountExtractorStripsFXMarkersBeforeScanning(t *testing.T) {
	e := NewAmountExtractor([]string{"USD", "EUR"})
	line := lineFromText("CARD PAYMENT USD 42.10 34.99")
	amounts := e.Extract(line)

	if len(amounts) != 2 {
		t.Fatalf("expected FX marker stripped leaving 2 amounts, got %d", len(amounts))
	}
}

func TestAmountExtractorNoAmountsReturnsNil(t *testing.T) {
	e := NewAmountExtractor(nil)
	line := lineFromText("BALANCE BROUGHT FORWARD")
	amounts := e.Extract(line)
	if amounts != nil {
		t.Errorf("expected nil, got %v", amounts)
	}
}

func TestHasFXMeta(t *testing.T) {
	e := NewAmountExtractor([]string{"USD", "EUR", "KES"})
	tests := []struct {
		text string
		want bool
	}{
		{"FX RATE USD 1.27", true},
		{"foreign transaction kes 500.00", true},
		{"rate: 1.268.", true},
		{"ordinary card payment", false},
	}
	for _, tt := range tests {
		if got := e.HasFXMeta(tt.text); got != tt.want {
			t.Errorf("HasFXMeta(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestRoundHalfToEven(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.00"},
		{"1.015", "1.02"},
		{"1.025", "1.02"},
		{"2.5", "2.50"},
	}
	for _, tt := range tests {
		got := roundHalfToEven(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("roundHalfToEven(%s) = %s, want %s", tt.in, got.String(), tt.want)
		}
	}
}
