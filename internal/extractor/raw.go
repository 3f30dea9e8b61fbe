package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

// ExtractRawTokens is the fallback PDF extractor tried after the
// structured library path (see ExtractTokenStream): it walks the raw PDF
// byte stream directly, without the ledongthuc/pdf library, and emits
// coordinate-tagged token.Tokens the same way ExtractTokens does for the
// structured path. It exists for PDFs whose content streams the library
// can't parse (custom CIDFont/Type0 encodings, malformed xrefs) by:
//
//  1. Finding all ToUnicode CMap streams and building character mappings
//  2. Finding content streams with text operators (Tj, TJ, ')
//  3. Decoding both literal strings (...) and hex strings <...>
//  4. Walking Td/TD/T* position operators to track a running (x, y) so
//     each decoded chunk gets a real, if approximate, page position
//     instead of being collapsed into one opaque line of text
//
// Coordinates here are approximate: PDF content streams rarely set an
// absolute position more than once per line, and Td is relative to the
// current text line matrix, not the page origin. Treating each BT block
// as its own local (0, 0) and walking Td deltas from there recovers the
// right reading order and row grouping without claiming page-absolute
// geometry; ExtractTokenStream still reports these tokens as
// coordsOK=true.
func ExtractRawTokens(filePath string) ([]token.Token, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	streams := extractStreams(data)
	if len(streams) == 0 {
		return nil, nil
	}

	cmaps := FindCMaps(data)
	var cmap *CMap
	if len(cmaps) > 0 {
		cmap = MergeCMaps(cmaps)
	}

	var toks []token.Token
	pageIndex := 0
	for _, stream := range streams {
		decompressed := tryDecompress(stream)
		pageToks := extractTokensFromStream(pageIndex, decompressed, cmap)
		if len(pageToks) == 0 {
			continue
		}
		toks = append(toks, pageToks...)
		pageIndex++
	}
	return toks, nil
}

// ExtractTextRaw serves the raw-stream tier of ExtractText in pdf.go,
// tried after the structured library and before pdftotext/OCR, with the
// plain-text contract that tier expects: one joined string per page, built
// from the same token walk ExtractRawTokens performs.
func ExtractTextRaw(filePath string) ([]string, error) {
	toks, err := ExtractRawTokens(filePath)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}
	return joinTokensIntoPages(toks), nil
}

// joinTokensIntoPages regroups a token stream back into one text blob
// per page, rows separated by newlines, for callers that only want text.
func joinTokensIntoPages(toks []token.Token) []string {
	var pages []string
	var page strings.Builder
	var row strings.Builder
	currentPage := -1
	currentY := 0.0
	haveRow := false

	flushRow := func() {
		if row.Len() == 0 {
			return
		}
		if page.Len() > 0 {
			page.WriteString("\n")
		}
		page.WriteString(strings.TrimSpace(row.String()))
		row.Reset()
	}
	flushPage := func() {
		flushRow()
		if page.Len() > 0 {
			pages = append(pages, page.String())
			page.Reset()
		}
	}

	for _, tok := range toks {
		if tok.PageIndex != currentPage {
			flushPage()
			currentPage = tok.PageIndex
			haveRow = false
		}
		if !haveRow || tok.Y != currentY {
			flushRow()
			currentY = tok.Y
			haveRow = true
		}
		if row.Len() > 0 {
			row.WriteString(" ")
		}
		row.WriteString(tok.Text)
	}
	flushPage()
	return pages
}

// extractStreams finds all stream...endstream blocks in the PDF.
func extractStreams(data []byte) [][]byte {
	var streams [][]byte
	streamMarker := []byte("stream")
	endMarker := []byte("endstream")

	offset := 0
	for offset < len(data) {
		idx := bytes.Index(data[offset:], streamMarker)
		if idx < 0 {
			break
		}
		start := offset + idx + len(streamMarker)

		// Skip \r\n or \n after "stream"
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		endIdx := bytes.Index(data[start:], endMarker)
		if endIdx < 0 {
			break
		}

		streamData := data[start : start+endIdx]
		if len(streamData) > 0 {
			streams = append(streams, streamData)
		}
		offset = start + endIdx + len(endMarker)
	}
	return streams
}

// tryDecompress attempts zlib decompression; returns original data if it fails.
func tryDecompress(data []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}

// Patterns for PDF text operators
var (
	// Matches hex strings for Tj: <hex> Tj
	hexTjPattern = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*Tj`)
	// Matches literal strings for Tj: (text) Tj
	litTjPattern = regexp.MustCompile(`\(([^)]*)\)\s*Tj`)
	// Matches TJ arrays: [...] TJ
	tjArrayPattern = regexp.MustCompile(`\[([^\]]*)\]\s*TJ`)
	// Matches hex strings within TJ arrays
	hexInArrayRe = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
	// Matches literal strings within TJ arrays
	litInArrayRe = regexp.MustCompile(`\(([^)]*)\)`)
	// Matches ' operator
	tickPattern = regexp.MustCompile(`\(([^)]*)\)\s*'`)
	// Matches Td/TD operators: tx ty Td|TD
	tdPattern = regexp.MustCompile(`([\d.\-]+)\s+([\d.\-]+)\s+T[dD]`)
)

// nominalLeading is the line-height fallback used for T* (which repeats
// the stream's last Tl-set leading, not tracked here) and for Td matches
// whose ty argument fails to parse.
const nominalLeading = -10.0

// extractTokensFromStream parses a PDF content stream into coordinate
// -tagged tokens, one per decoded text run, in the same (Y desc, X asc)
// convention ExtractTokens uses for the structured path.
func extractTokensFromStream(pageIndex int, data []byte, cmap *CMap) []token.Token {
	content := string(data)
	if !strings.Contains(content, "Tj") && !strings.Contains(content, "TJ") &&
		!strings.Contains(content, "BT") {
		return nil
	}

	var toks []token.Token
	for _, block := range splitBTBlocks(content) {
		toks = append(toks, tokensForTextBlock(pageIndex, block, cmap)...)
	}

	if len(toks) == 0 {
		if text := extractAllText(content, cmap); text != "" {
			toks = append(toks, token.Token{Text: text, PageIndex: pageIndex, X0: 0, X1: float64(len(text)) * defaultAvgCharWidth, Y: 0})
		}
	}
	return toks
}

// tokensForTextBlock walks one BT...ET block, tracking a running text
// position from Td/TD/T* so each decoded chunk carries its own (x, y).
func tokensForTextBlock(pageIndex int, block string, cmap *CMap) []token.Token {
	var toks []token.Token
	curX, curY := 0.0, 0.0

	emit := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		width := float64(len(text)) * defaultAvgCharWidth
		toks = append(toks, token.Token{
			Text:      text,
			PageIndex: pageIndex,
			X0:        curX,
			X1:        curX + width,
			Y:         curY,
		})
		curX += width
	}

	for _, op := range strings.Split(block, "\n") {
		op = strings.TrimSpace(op)

		if m := tdPattern.FindStringSubmatch(op); m != nil {
			curX = 0
			if ty, err := strconv.ParseFloat(m[2], 64); err == nil {
				curY += ty
			} else {
				curY += nominalLeading
			}
		}
		if op == "T*" {
			curX = 0
			curY += nominalLeading
		}

		for _, m := range hexTjPattern.FindAllStringSubmatch(op, -1) {
			emit(decodeHexString(m[1], cmap))
		}
		for _, m := range litTjPattern.FindAllStringSubmatch(op, -1) {
			emit(decodeLiteralString(m[1], cmap))
		}
		for _, m := range tjArrayPattern.FindAllStringSubmatch(op, -1) {
			emit(decodeTJArray(m[1], cmap))
		}
		for _, m := range tickPattern.FindAllStringSubmatch(op, -1) {
			curX = 0
			curY += nominalLeading
			emit(decodeLiteralString(m[1], cmap))
		}
	}
	return toks
}

// splitBTBlocks extracts content between BT and ET operators.
func splitBTBlocks(content string) []string {
	var blocks []string
	remaining := content
	for {
		btIdx := strings.Index(remaining, "BT")
		if btIdx < 0 {
			break
		}
		etIdx := strings.Index(remaining[btIdx:], "ET")
		if etIdx < 0 {
			break
		}
		block := remaining[btIdx : btIdx+etIdx+2]
		blocks = append(blocks, block)
		remaining = remaining[btIdx+etIdx+2:]
	}
	return blocks
}

// extractAllText extracts all text from content without BT/ET block structure.
func extractAllText(content string, cmap *CMap) string {
	var parts []string

	for _, m := range hexTjPattern.FindAllStringSubmatch(content, -1) {
		text := decodeHexString(m[1], cmap)
		if text != "" {
			parts = append(parts, text)
		}
	}
	for _, m := range litTjPattern.FindAllStringSubmatch(content, -1) {
		text := decodeLiteralString(m[1], cmap)
		if text != "" {
			parts = append(parts, text)
		}
	}
	for _, m := range tjArrayPattern.FindAllStringSubmatch(content, -1) {
		text := decodeTJArray(m[1], cmap)
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}

// decodeHexString decodes a hex-encoded PDF string using CMap if available.
func decodeHexString(hexStr string, cmap *CMap) string {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return ""
	}

	if cmap != nil && len(cmap.charMap) > 0 {
		if result := cmap.Decode(raw); result != "" {
			return result
		}
	}

	// Fallback: try as direct UTF-16BE
	if len(raw)%2 == 0 && len(raw) >= 2 {
		var result strings.Builder
		for i := 0; i+1 < len(raw); i += 2 {
			cp := rune(raw[i])<<8 | rune(raw[i+1])
			if unicode.IsPrint(cp) || cp == ' ' {
				result.WriteRune(cp)
			}
		}
		if result.Len() > 0 {
			return result.String()
		}
	}

	return cleanString(string(raw))
}

// decodeLiteralString decodes a literal PDF string using CMap if available.
func decodeLiteralString(s string, cmap *CMap) string {
	decoded := decodePDFEscapes(s)

	if cmap != nil && len(cmap.charMap) > 0 {
		if result := cmap.Decode([]byte(decoded)); result != "" && isPrintable(result) {
			return result
		}
	}

	return cleanString(decoded)
}

// decodeTJArray decodes a TJ array, which contains a mix of strings and numbers.
func decodeTJArray(arrayContent string, cmap *CMap) string {
	type match struct {
		pos    int
		isHex  bool
		groups []string
	}
	var all []match

	for _, idx := range hexInArrayRe.FindAllStringSubmatchIndex(arrayContent, -1) {
		all = append(all, match{pos: idx[0], isHex: true, groups: []string{
			arrayContent[idx[0]:idx[1]], arrayContent[idx[2]:idx[3]],
		}})
	}
	for _, idx := range litInArrayRe.FindAllStringSubmatchIndex(arrayContent, -1) {
		all = append(all, match{pos: idx[0], isHex: false, groups: []string{
			arrayContent[idx[0]:idx[1]], arrayContent[idx[2]:idx[3]],
		}})
	}

	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].pos < all[j-1].pos; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}

	var parts []string
	for _, m := range all {
		var text string
		if m.isHex {
			text = decodeHexString(m.groups[1], cmap)
		} else {
			text = decodeLiteralString(m.groups[1], cmap)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "")
}

// decodePDFEscapes handles basic PDF string escape sequences.
func decodePDFEscapes(s string) string {
	var buf strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(':
				buf.WriteByte('(')
			case ')':
				buf.WriteByte(')')
			case '\\':
				buf.WriteByte('\\')
			default:
				if s[i] >= '0' && s[i] <= '7' {
					val := int(s[i] - '0')
					for j := 1; j < 3 && i+j < len(s) && s[i+j] >= '0' && s[i+j] <= '7'; j++ {
						val = val*8 + int(s[i+j]-'0')
						i++
					}
					if val >= 0 && val < 256 {
						buf.WriteByte(byte(val))
					}
				} else {
					buf.WriteByte(s[i])
				}
			}
		} else {
			buf.WriteByte(s[i])
		}
		i++
	}
	return buf.String()
}

// cleanString removes non-printable characters.
func cleanString(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		return -1
	}, s))
}

// isPrintable checks if a string contains mostly printable characters.
func isPrintable(s string) bool {
	if len(s) == 0 {
		return false
	}
	printable := 0
	for _, r := range s {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' || r == ' ' {
			printable++
		}
	}
	return float64(printable)/float64(len([]rune(s))) > 0.5
}
