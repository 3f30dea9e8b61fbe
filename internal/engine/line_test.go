package engine

import (
	"testing"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

func TestLineReconstructorGroupsByYBand(t *testing.T) {
	toks := []token.Token{
		{Text: "15/01/2024", PageIndex: 0, X0: 0, X1: 50, Y: 700},
		{Text: "TESCO", PageIndex: 0, X0: 55, X1: 90, Y: 700.5},
		{Text: "12.50", PageIndex: 0, X0: 400, X1: 430, Y: 699.8},
		{Text: "16/01/2024", PageIndex: 0, X0: 0, X1: 50, Y: 685},
	}
	r := NewLineReconstructor(1.2, nil)
	lines, err := r.Reconstruct(token.NewSliceStream(toks))
	if err != nil {
		t.Fatalf("Reconstruct returned error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %#v", len(lines), lines)
	}
	if lines[0].Text == "" {
		t.Error("expected non-empty first line text")
	}
}

func TestLineReconstructorDropsInvalidTokens(t *testing.T) {
	toks := []token.Token{
		{Text: "ok", PageIndex: 0, X0: 0, X1: 10, Y: 100},
		{Text: "bad", PageIndex: 0, X0: 10, X1: 5, Y: 100}, // X1 < X0, invalid
	}
	var warned bool
	r := NewLineReconstructor(1.2, func(string) { warned = true })
	lines, err := r.Reconstruct(token.NewSliceStream(toks))
	if err != nil {
		t.Fatalf("Reconstruct returned error: %v", err)
	}
	if !warned {
		t.Error("expected a warning for the invalid token")
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line after dropping invalid token, got %d", len(lines))
	}
}

func TestLineRightEdgeResolvesTokenBoundary(t *testing.T) {
	toks := []token.Token{
		{Text: "TESCO STORES", X0: 0, X1: 60},
		{Text: "12.50", X0: 65, X1: 95},
	}
	r := NewLineReconstructor(1.2, nil)
	lines, _ := r.Reconstruct(token.NewSliceStream([]token.Token{
		{Text: toks[0].Text, PageIndex: 0, X0: toks[0].X0, X1: toks[0].X1, Y: 500},
		{Text: toks[1].Text, PageIndex: 0, X0: toks[1].X0, X1: toks[1].X1, Y: 500},
	}))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	rightX, ok := lines[0].RightEdge(len(lines[0].Text))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if rightX != 95 {
		t.Errorf("expected right edge of last token (95), got %v", rightX)
	}
}
