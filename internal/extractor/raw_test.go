package extractor

import (
	"testing"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

func TestTokensForTextBlockTracksPositionAcrossTdOperators(t *testing.T) {
	block := "BT\n100 700 Td\n(Opening balance) Tj\n0 -12 Td\n(15/01/2024 TESCO STORES) Tj\nET"

	toks := tokensForTextBlock(0, block, nil)
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %+v", len(toks), toks)
	}
	if toks[0].Text != "Opening balance" {
		t.Errorf("first token text = %q", toks[0].Text)
	}
	if toks[1].Text != "15/01/2024 TESCO STORES" {
		t.Errorf("second token text = %q", toks[1].Text)
	}
	if toks[1].Y >= toks[0].Y {
		t.Errorf("expected second line's Y below the first after the Td, got %.1f >= %.1f", toks[1].Y, toks[0].Y)
	}
	if toks[0].X0 != 0 || toks[1].X0 != 0 {
		t.Errorf("expected both lines to restart at X0=0 after their Td, got %.1f and %.1f", toks[0].X0, toks[1].X0)
	}
}

func TestTokensForTextBlockAdvancesXWithinALine(t *testing.T) {
	block := "BT\n50 500 Td\n(TESCO STORES) Tj\n(12.50) Tj\nET"

	toks := tokensForTextBlock(0, block, nil)
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens on the same line, got %d", len(toks))
	}
	if toks[0].Y != toks[1].Y {
		t.Errorf("expected both chunks to share a Y (no Td between them), got %.1f and %.1f", toks[0].Y, toks[1].Y)
	}
	if toks[1].X0 <= toks[0].X0 {
		t.Errorf("expected the second chunk's X0 to advance past the first, got %.1f <= %.1f", toks[1].X0, toks[0].X0)
	}
}

func TestTokensForTextBlockHandlesTStarAndTickOperators(t *testing.T) {
	block := "BT\n(first line) Tj\nT*\n(second line) '\nET"

	toks := tokensForTextBlock(0, block, nil)
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(toks))
	}
	if toks[1].Y >= toks[0].Y {
		t.Errorf("expected T* and ' to both advance to a new, lower line")
	}
}

func TestExtractRawTokensMissingFileReturnsError(t *testing.T) {
	toks, err := ExtractRawTokens("/nonexistent/statement.pdf")
	if err == nil {
		t.Fatal("expected an error reading a nonexistent file")
	}
	if toks != nil {
		t.Errorf("expected nil tokens on read error, got %v", toks)
	}
}

func TestJoinTokensIntoPagesGroupsRowsByYAndPage(t *testing.T) {
	toks := []token.Token{
		{Text: "Opening balance", PageIndex: 0, Y: 700},
		{Text: "15/01/2024", PageIndex: 0, Y: 688},
		{Text: "TESCO STORES", PageIndex: 0, Y: 688},
		{Text: "Closing balance", PageIndex: 1, Y: 700},
	}

	pages := joinTokensIntoPages(toks)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %v", len(pages), pages)
	}
	if pages[0] != "Opening balance\n15/01/2024 TESCO STORES" {
		t.Errorf("page 0 = %q", pages[0])
	}
	if pages[1] != "Closing balance" {
		t.Errorf("page 1 = %q", pages[1])
	}
}
