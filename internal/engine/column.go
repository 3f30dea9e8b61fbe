package engine

import "strings"

// ColumnModel records the money-in/money-out/balance column right
// edges detected from the most recent header line (§4.B).
type ColumnModel struct {
	MoneyInRightX  float64
	MoneyOutRightX float64
	BalanceRightX  float64
	HeaderY        float64
	FromDefaults   bool
}

// Thresholds returns the two classification cutoffs derived from the
// current column model: the money-out/money-in boundary and the
// money-in/balance boundary. Both are inclusive on the left column
// (§4.B, §8 property 10).
func (c ColumnModel) Thresholds() (outIn, inBalance float64) {
	outIn = (c.MoneyOutRightX + c.MoneyInRightX) / 2
	inBalance = (c.MoneyInRightX + c.BalanceRightX) / 2
	return
}

// ColumnTracker maintains the per-page ColumnModel, refreshing it
// whenever a recognized header line recurs (§4.B).
type ColumnTracker struct {
	columnNames          []string
	headerLookaheadLines int
	requireHeaderPerPage bool
	defaults             ColumnModel

	current      ColumnModel
	currentPage  int
	haveModel    bool
	linesOnPage  int
	headerSeenOnPage bool

	Warn func(string)
}

// NewColumnTracker builds a tracker seeded with the profile's default
// thresholds.
func NewColumnTracker(columnNames []string, headerLookaheadLines int, requireHeaderPerPage bool, defaults ColumnModel, warn func(string)) *ColumnTracker {
	if headerLookaheadLines <= 0 {
		headerLookaheadLines = 8
	}
	if warn == nil {
		warn = func(string) {}
	}
	return &ColumnTracker{
		columnNames:          columnNames,
		headerLookaheadLines: headerLookaheadLines,
		requireHeaderPerPage: requireHeaderPerPage,
		defaults:             defaults,
		current:              defaults,
		Warn:                 warn,
	}
}

// Observe processes one line, updating the model if it is a header, and
// returns the column model that applies to this line. A header line
// gets the new model it defines, which then applies to every following
// line until the next header.
func (c *ColumnTracker) Observe(line Line) ColumnModel {
	if line.PageIndex != c.currentPage {
		c.onNewPage(line.PageIndex)
	}
	c.linesOnPage++

	if model, ok := c.matchHeader(line); ok {
		c.current = model
		c.haveModel = true
		c.headerSeenOnPage = true
		return c.current
	}

	if !c.haveModel {
		c.current = c.defaults
		c.haveModel = true
	}

	if c.linesOnPage == c.headerLookaheadLines && !c.headerSeenOnPage && c.requireHeaderPerPage {
		c.Warn("no header found within lookahead window on page; retaining previous column model")
	}

	return c.current
}

func (c *ColumnTracker) onNewPage(page int) {
	c.currentPage = page
	c.linesOnPage = 0
	c.headerSeenOnPage = false
	// Model carries over from the previous page per §4.B's per-page rule;
	// c.current is left untouched.
}

// matchHeader checks whether line is a recognized header and, if so,
// computes a new ColumnModel from the named columns' right edges.
func (c *ColumnTracker) matchHeader(line Line) (ColumnModel, bool) {
	lower := strings.ToLower(line.Text)
	if !strings.Contains(lower, "date") {
		return ColumnModel{}, false
	}
	matched := 0
	for _, name := range c.columnNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			matched++
		}
	}
	if matched < 2 {
		return ColumnModel{}, false
	}

	model := ColumnModel{HeaderY: line.Y}
	outX, inX, balX := 0.0, 0.0, 0.0
	foundOut, foundIn, foundBal := false, false, false

	for i, span := range line.XSpans {
		text := sliceText(line.Text, span)
		lt := strings.ToLower(text)
		switch {
		case containsAnyWord(lt, "out", "withdrawn", "paid out"):
			outX = rightEdgeOf(line, i)
			foundOut = true
		case containsAnyWord(lt, "in", "paid in"):
			inX = rightEdgeOf(line, i)
			foundIn = true
		case containsAnyWord(lt, "balance"):
			balX = rightEdgeOf(line, i)
			foundBal = true
		}
	}

	if !foundOut {
		outX = c.current.MoneyOutRightX
	}
	if !foundIn {
		inX = c.current.MoneyInRightX
	}
	if !foundBal {
		balX = c.current.BalanceRightX
	}
	if !foundOut && !foundIn && !foundBal {
		return ColumnModel{}, false
	}

	model.MoneyOutRightX = outX
	model.MoneyInRightX = inX
	model.BalanceRightX = balX
	return model, true
}

func containsAnyWord(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func sliceText(text string, span XSpan) string {
	start, end := int(span.Start), int(span.End)
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}

func rightEdgeOf(line Line, tokenIdx int) float64 {
	if tokenIdx < 0 || tokenIdx >= len(line.Tokens) {
		return 0
	}
	return line.Tokens[tokenIdx].X1
}
