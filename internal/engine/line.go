package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

// XSpan is the (start, end) character offset of one token's text run
// within a reconstructed line's Text; the token's page x-coordinates are
// on the matching entry of Line.Tokens.
type XSpan struct {
	Start, End float64
}

// Line is an ordered, y-banded group of tokens reconstructed into a
// single text row (§3, §4.A).
type Line struct {
	PageIndex int
	Y         float64
	Text      string
	Tokens    []token.Token
	XSpans    []XSpan
	Index     int // position within the full reconstructed sequence
}

const defaultAvgCharWidth = 4.5

// LineReconstructor groups tokens into ordered lines by y-band,
// preserving x-positions and right edges (§4.A).
type LineReconstructor struct {
	YTolerance float64
	Warn       func(msg string)
}

// NewLineReconstructor builds a reconstructor using the given y
// tolerance (profile.Profile.YTolerance, defaulting to 1.2pt).
func NewLineReconstructor(yTolerance float64, warn func(string)) *LineReconstructor {
	if yTolerance <= 0 {
		yTolerance = 1.2
	}
	if warn == nil {
		warn = func(string) {}
	}
	return &LineReconstructor{YTolerance: yTolerance, Warn: warn}
}

// Reconstruct drains a token.Stream and returns the ordered sequence of
// Lines. Tokens with invalid coordinates are dropped with a warning;
// this is never fatal (§4.A Failure modes).
func (r *LineReconstructor) Reconstruct(stream token.Stream) ([]Line, error) {
	var toks []token.Token
	for {
		t, ok, err := stream.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !t.Valid() {
			r.Warn("dropped token with invalid coordinates: " + t.String())
			continue
		}
		toks = append(toks, t)
	}

	var lines []Line
	i := 0
	for i < len(toks) {
		page := toks[i].PageIndex
		bandStart := toks[i].Y

		// Collect every token within y-tolerance of bandStart on this page.
		// Tokens arrive already ordered by (page, y, x0), so the band is
		// a contiguous run.
		j := i
		var bandToks []token.Token
		for j < len(toks) && toks[j].PageIndex == page && math.Abs(toks[j].Y-bandStart) <= r.YTolerance {
			bandToks = append(bandToks, toks[j])
			j++
		}
		i = j

		sort.SliceStable(bandToks, func(a, b int) bool { return bandToks[a].X0 < bandToks[b].X0 })
		lines = append(lines, buildLine(page, bandStart, bandToks, len(lines)))
	}
	return lines, nil
}

func buildLine(page int, y float64, toks []token.Token, idx int) Line {
	var sb strings.Builder
	spans := make([]XSpan, 0, len(toks))

	var prevX1 float64
	for i, t := range toks {
		if i > 0 {
			gap := t.X0 - prevX1
			n := 1
			if gap > 0 {
				n = int(math.Round(gap / defaultAvgCharWidth))
				if n < 1 {
					n = 1
				}
			}
			sb.WriteString(strings.Repeat(" ", n))
		}
		start := float64(sb.Len())
		sb.WriteString(t.Text)
		end := float64(sb.Len())
		spans = append(spans, XSpan{Start: start, End: end})
		prevX1 = t.X1
	}

	return Line{
		PageIndex: page,
		Y:         y,
		Text:      sb.String(),
		Tokens:    toks,
		XSpans:    spans,
		Index:     idx,
	}
}

// RightEdge returns the x1 (end-x) of the token whose text run ends at
// or after the given character offset into Line.Text. Used by the
// AmountExtractor to recover a matched substring's geometric position.
func (l Line) RightEdge(charEnd int) (float64, bool) {
	for i := range l.Tokens {
		if i < len(l.XSpans) && int(l.XSpans[i].End) >= charEnd {
			return l.Tokens[i].X1, true
		}
	}
	if len(l.Tokens) > 0 {
		return l.Tokens[len(l.Tokens)-1].X1, true
	}
	return 0, false
}
