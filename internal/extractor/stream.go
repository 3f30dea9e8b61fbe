package extractor

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

// ExtractTokenStream runs the same tiered fallback cascade as
// ExtractText, but produces a token.Stream for the engine instead of
// joined page strings. The structured library path and the raw-stream
// fallback both carry real, if approximate, x/y geometry (coordsOK
// true); only pdftotext/OCR text recovers line order with no column
// geometry at all, so that tier is synthesized into one token per line
// with coordsOK false. Only the caller learns this through coordsOK; the
// engine is not told, and its ColumnTracker applies the same header
// matching to these one-token lines as to any other line.
func ExtractTokenStream(filePath string) (stream token.Stream, coordsOK bool, err error) {
	toks, libErr := ExtractTokens(filePath)
	if libErr == nil && len(toks) > 0 {
		return token.NewSliceStream(toks), true, nil
	}

	rawToks, rawErr := ExtractRawTokens(filePath)
	if rawErr == nil && len(rawToks) > 0 {
		return token.NewSliceStream(rawToks), true, nil
	}

	pages, textErr := ExtractText(filePath)
	if textErr != nil {
		if libErr != nil {
			return nil, false, fmt.Errorf("extractor: no extraction method succeeded: library: %v; fallback: %w", libErr, textErr)
		}
		return nil, false, fmt.Errorf("extractor: fallback extraction failed: %w", textErr)
	}

	return token.NewSliceStream(syntheticTokensFromPages(pages)), false, nil
}

// syntheticTokensFromPages builds one token per text line, at
// monotonically decreasing Y and a nominal 8pt line pitch, so the
// LineReconstructor's y-banding still produces one Line per input line.
func syntheticTokensFromPages(pages []string) []token.Token {
	var toks []token.Token
	const linePitch = 8.0
	for pageIdx, page := range pages {
		y := 0.0
		for _, line := range strings.Split(page, "\n") {
			if strings.TrimSpace(line) == "" {
				y -= linePitch
				continue
			}
			toks = append(toks, token.Token{
				Text:      line,
				PageIndex: pageIdx,
				X0:        0,
				X1:        float64(len(line)) * defaultAvgCharWidth,
				Y:         y,
			})
			y -= linePitch
		}
	}
	return toks
}
