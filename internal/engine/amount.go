package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches a signed, thousands-grouped, two-decimal money
// value (§4.E). Figures of 1,000 or more match whole only when they are
// comma-grouped: "1,234.56" matches as written, while an ungrouped
// "1234.56" yields only "234.56".
var amountPattern = regexp.MustCompile(`-?\d{1,3}(?:,\d{3})*\.\d{2}`)

// Amount is one extracted monetary figure together with its right-edge
// x-coordinate, used by the Classifier to assign it to a column.
type Amount struct {
	Value   decimal.Decimal
	RightX  float64
	HasX    bool
	RawText string
}

// AmountExtractor finds every money figure on a line (§4.E). Before
// scanning, an "Amount: <marker> <figure>" annotation is blanked whole, so
// its foreign figure is never returned; any other occurrence of an FX
// marker (e.g. the "USD" of "USD 42.10") is removed on its own, and the
// figure after it is still returned as an amount.
type AmountExtractor struct {
	fxMarkers []string
}

// NewAmountExtractor builds an extractor; fxMarkers come from
// profile.Profile.FXMarkers.
func NewAmountExtractor(fxMarkers []string) *AmountExtractor {
	return &AmountExtractor{fxMarkers: fxMarkers}
}

// Extract scans a reconstructed line for amounts, left to right, and
// resolves each match's right edge via the line's token geometry.
func (e *AmountExtractor) Extract(line Line) []Amount {
	text := e.stripFXMarkers(line.Text)
	matches := amountPattern.FindAllStringIndex(text, -1)
	if matches == nil {
		return nil
	}
	out := make([]Amount, 0, len(matches))
	for _, m := range matches {
		raw := text[m[0]:m[1]]
		val, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			continue
		}
		rightX, hasX := line.RightEdge(m[1])
		out = append(out, Amount{Value: val, RightX: rightX, HasX: hasX, RawText: raw})
	}
	return out
}

// fxRatePattern matches the "rate:" literal that introduces a
// currency-conversion rate line even when no currency code appears on
// it (e.g. "rate: 1.268."), per §4.G event 4.
var fxRatePattern = regexp.MustCompile(`(?i)\brate:`)

// HasFXMeta reports whether the line carries an FX marker token or a
// "rate:" literal, per the state machine's FX-meta-line event (§4.G
// event 4). The state machine appends an FX line to the description of
// the transaction in progress, or carries it over into the next one when
// none is in progress; its figures are never read as amounts (§9
// Re-architecture: "carry-over only").
func (e *AmountExtractor) HasFXMeta(text string) bool {
	if fxRatePattern.MatchString(text) {
		return true
	}
	upper := strings.ToUpper(text)
	for _, marker := range e.fxMarkers {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}

func (e *AmountExtractor) stripFXMarkers(text string) string {
	if len(e.fxMarkers) == 0 {
		return text
	}
	out := text
	for _, marker := range e.fxMarkers {
		re := regexp.MustCompile(`(?i)\bAmount:\s*` + regexp.QuoteMeta(marker) + `\s*-?[\d,]*\.?\d*`)
		out = re.ReplaceAllStringFunc(out, func(s string) string { return strings.Repeat(" ", len(s)) })
	}
	for _, marker := range e.fxMarkers {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(marker) + `\b`)
		out = re.ReplaceAllString(out, " ")
	}
	return out
}

// roundHalfToEven rounds a decimal to 2 places using banker's rounding,
// applied only when combining values (e.g. reconciliation deltas), never
// on a value lifted directly from the PDF (§3 Decimal precision rule).
func roundHalfToEven(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
