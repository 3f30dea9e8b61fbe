package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateResultKind tags what DateEngine.Process found on a line (§4.D).
type DateResultKind int

const (
	// DateNone: no date pattern matched; the line is unrelated to dates.
	DateNone DateResultKind = iota
	// DateNew: a fully-formed date was found. A new date always wins
	// over any pending split-year completion (§4.D rule 1).
	DateNew
	// DatePendingStarted: a split-year date was found (first three
	// digits of the year only); the engine now awaits a completing
	// digit on a subsequent line.
	DatePendingStarted
	// DateCompleted: a previously pending split-year date was
	// completed by the current line's leading digit.
	DateCompleted
)

// DateResult is the outcome of processing one line through the engine.
type DateResult struct {
	Kind      DateResultKind
	Date      time.Time
	Remainder string // trailing text after the date match, to re-queue
	Warning   string
}

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

	fullSlashDate      = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	shortYearSlashDate = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})/(\d{2})\b`)
	splitYearSlashDate = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})/(\d{3})\s*$`)
	splitYearDigit     = regexp.MustCompile(`^\s*(\d)(.*)$`)

	textDateFullYear  = regexp.MustCompile(`(?i)^\s*(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{4})\b`)
	textDateShortYear = regexp.MustCompile(`(?i)^\s*(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{2})\b`)
	textDateNoYear    = regexp.MustCompile(`(?i)^\s*(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)

	dashDateFullYear = regexp.MustCompile(`(?i)^\s*(\d{1,2})-(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*-(\d{4})\b`)
	dashDateShortYear = regexp.MustCompile(`(?i)^\s*(\d{1,2})-(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*-(\d{2})\b`)
)

var monthByAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// DateEngine parses dates per §4.D: ordinal stripping, split-year
// continuation, new-date-wins, and period-aware cross-year inference.
type DateEngine struct {
	periodStart, periodEnd time.Time
	havePeriod             bool

	pendingYearDigit bool
	pendingDay       int
	pendingMonth     time.Month
	pendingYearPrefix string // first 3 digits of the year, e.g. "202"

	warn func(string)
}

// NewDateEngine builds a DateEngine. warn may be nil.
func NewDateEngine(warn func(string)) *DateEngine {
	if warn == nil {
		warn = func(string) {}
	}
	return &DateEngine{warn: warn}
}

// SetPeriod records the statement's known date window for cross-year
// inference (§4.D rule 3).
func (d *DateEngine) SetPeriod(start, end time.Time) {
	d.periodStart, d.periodEnd = start, end
	d.havePeriod = true
}

// ResetState clears DateEngine state, as required at period boundaries
// (§3 DateEngine state).
func (d *DateEngine) ResetState() {
	d.pendingYearDigit = false
	d.pendingYearPrefix = ""
}

// Pending reports whether a split-year completion is outstanding.
func (d *DateEngine) Pending() bool {
	return d.pendingYearDigit
}

// Process applies §4.D's four rules, in priority order, to one line of
// text (already stripped of leading/trailing whitespace by the caller
// is not required — Process handles that).
func (d *DateEngine) Process(line string) DateResult {
	clean := stripOrdinal(line)

	// Rule 1: a fully-formed date always wins, even over a pending
	// split-year completion.
	if date, rest, ok, warn := d.matchFullDate(clean); ok {
		if d.pendingYearDigit {
			d.warn("discarding incomplete split-year date; a new date takes priority")
			d.pendingYearDigit = false
		}
		res := DateResult{Kind: DateNew, Date: date, Remainder: rest}
		if warn != "" {
			res.Warning = warn
		}
		return res
	}

	// Rule 2: consume a single leading digit to complete a pending date.
	if d.pendingYearDigit {
		if m := splitYearDigit.FindStringSubmatch(clean); m != nil && isDigit(m[1]) {
			yearStr := d.pendingYearPrefix + m[1]
			year, err := strconv.Atoi(yearStr)
			if err == nil {
				date := time.Date(year, d.pendingMonth, d.pendingDay, 0, 0, 0, 0, time.UTC)
				d.pendingYearDigit = false
				d.pendingYearPrefix = ""
				return DateResult{Kind: DateCompleted, Date: date, Remainder: strings.TrimSpace(m[2])}
			}
		}
		// Line does not start with a digit: the pending completion is
		// left outstanding; the caller treats this line normally.
		return DateResult{Kind: DateNone}
	}

	// Rule: split-year start (three digits of the year, awaiting the
	// fourth on a following line).
	if m := splitYearSlashDate.FindStringSubmatch(clean); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		d.pendingYearDigit = true
		d.pendingDay = day
		d.pendingMonth = time.Month(month)
		d.pendingYearPrefix = m[3]
		return DateResult{Kind: DatePendingStarted}
	}

	return DateResult{Kind: DateNone}
}

// matchFullDate tries every full-date pattern against the line and, on
// a year-less text date, applies cross-year inference.
func (d *DateEngine) matchFullDate(line string) (date time.Time, rest string, ok bool, warn string) {
	if m := fullSlashDate.FindStringSubmatchIndex(line); m != nil {
		day := atoiGroup(line, m, 2)
		month := atoiGroup(line, m, 4)
		year := atoiGroup(line, m, 6)
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), strings.TrimSpace(line[m[1]:]), true, ""
	}
	if m := dashDateFullYear.FindStringSubmatchIndex(line); m != nil {
		day := atoiGroup(line, m, 2)
		mon := monthByAbbrev[strings.ToLower(line[m[4]:m[5]])]
		year := atoiGroup(line, m, 6)
		return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC), strings.TrimSpace(line[m[1]:]), true, ""
	}
	if m := textDateFullYear.FindStringSubmatchIndex(line); m != nil {
		day := atoiGroup(line, m, 2)
		mon := monthByAbbrev[strings.ToLower(line[m[4]:m[5]])]
		year := atoiGroup(line, m, 6)
		return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC), strings.TrimSpace(line[m[1]:]), true, ""
	}
	if m := shortYearSlashDate.FindStringSubmatchIndex(line); m != nil {
		day := atoiGroup(line, m, 2)
		month := atoiGroup(line, m, 4)
		yy := atoiGroup(line, m, 6)
		year := twoDigitYearToFour(yy)
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), strings.TrimSpace(line[m[1]:]), true, ""
	}
	if m := dashDateShortYear.FindStringSubmatchIndex(line); m != nil {
		day := atoiGroup(line, m, 2)
		mon := monthByAbbrev[strings.ToLower(line[m[4]:m[5]])]
		yy := atoiGroup(line, m, 6)
		year := twoDigitYearToFour(yy)
		return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC), strings.TrimSpace(line[m[1]:]), true, ""
	}
	if m := textDateShortYear.FindStringSubmatchIndex(line); m != nil {
		day := atoiGroup(line, m, 2)
		mon := monthByAbbrev[strings.ToLower(line[m[4]:m[5]])]
		yy := atoiGroup(line, m, 6)
		year := twoDigitYearToFour(yy)
		return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC), strings.TrimSpace(line[m[1]:]), true, ""
	}
	if m := textDateNoYear.FindStringSubmatchIndex(line); m != nil {
		day := atoiGroup(line, m, 2)
		mon := monthByAbbrev[strings.ToLower(line[m[4]:m[5]])]
		year, inferWarn := d.inferYear(day, mon)
		dt, valid := safeDate(year, mon, day)
		if !valid {
			return time.Time{}, "", false, ""
		}
		w := ""
		if inferWarn {
			w = "date without year resolved via cross-year inference or default fallback"
		}
		return dt, strings.TrimSpace(line[m[1]:]), true, w
	}
	return time.Time{}, "", false, ""
}

// inferYear implements §4.D rule 3 and the Feb-29 Open-Question
// resolution from §9.
func (d *DateEngine) inferYear(day int, month time.Month) (year int, warnedCrossYear bool) {
	if !d.havePeriod {
		return 1, true
	}
	startY := d.periodStart.Year()
	endY := d.periodEnd.Year()

	if day == 29 && month == time.February {
		startLeap := isLeapYear(startY)
		endLeap := isLeapYear(endY)
		if startLeap && !endLeap {
			return startY, false
		}
		if endLeap && !startLeap {
			return endY, false
		}
	}

	if cand, ok := safeDate(startY, month, day); ok && !cand.Before(d.periodStart) && !cand.After(d.periodEnd) {
		return startY, false
	}
	if cand, ok := safeDate(endY, month, day); ok && !cand.Before(d.periodStart) && !cand.After(d.periodEnd) {
		return endY, false
	}

	if (d.periodStart.Month() == time.January || d.periodStart.Month() == time.February) &&
		(month == time.November || month == time.December) {
		return startY - 1, true
	}

	return startY, true
}

func safeDate(year int, month time.Month, day int) (time.Time, bool) {
	dt := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if dt.Year() != year || dt.Month() != month || dt.Day() != day {
		return time.Time{}, false
	}
	return dt, true
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func twoDigitYearToFour(yy int) int {
	if yy <= 68 {
		return 2000 + yy
	}
	return 1900 + yy
}

func stripOrdinal(s string) string {
	return ordinalSuffix.ReplaceAllString(s, "$1")
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

func atoiGroup(s string, m []int, groupIdx int) int {
	start, end := m[groupIdx], m[groupIdx+1]
	if start < 0 {
		return 0
	}
	n, _ := strconv.Atoi(s[start:end])
	return n
}
