package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

// ExtractTokens reads a PDF and returns every text item as a coordinate
// -tagged token.Token, page by page, ordered by (page, descending Y,
// ascending X0) so a token.SliceStream built from it already satisfies
// the ordering the LineReconstructor expects (§4.A, §6.1). This is the
// same content-stream walk as extractByContent, but it stops short of
// that function's row-joining — joining rows into Lines is the
// engine's job now, not the extractor's.
func ExtractTokens(filePath string) ([]token.Token, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("extractor: opening %s: %w", filePath, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("extractor: %s has no pages", filePath)
	}

	var toks []token.Token
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		pageToks := tokensForPage(i-1, content.Text)
		toks = append(toks, pageToks...)
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("extractor: no extractable text tokens in %s (image-based or custom-encoded PDF)", filePath)
	}
	return toks, nil
}

func tokensForPage(pageIndex int, items []pdf.Text) []token.Token {
	type rowKey struct {
		y int
	}
	byRow := make(map[rowKey][]pdf.Text)
	for _, t := range items {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		byRow[rowKey{y: roundToUnit(t.Y)}] = append(byRow[rowKey{y: roundToUnit(t.Y)}], t)
	}

	// Sort distinct rows descending by Y (PDF's origin is bottom-left,
	// so top-of-page rows carry the largest Y).
	keys := make([]int, 0, len(byRow))
	seen := make(map[int]bool)
	for k := range byRow {
		if !seen[k.y] {
			seen[k.y] = true
			keys = append(keys, k.y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	var out []token.Token
	for _, y := range keys {
		row := byRow[rowKey{y: y}]
		sort.Slice(row, func(a, b int) bool { return row[a].X < row[b].X })
		for _, t := range row {
			width := t.W
			if width <= 0 {
				width = float64(len(t.S)) * defaultAvgCharWidth
			}
			out = append(out, token.Token{
				Text:      t.S,
				PageIndex: pageIndex,
				X0:        t.X,
				X1:        t.X + width,
				Y:         t.Y,
				FontSize:  t.FontSize,
			})
		}
	}
	return out
}

const defaultAvgCharWidth = 4.5

func roundToUnit(f float64) int {
	if f >= 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}

