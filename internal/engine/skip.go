package engine

import (
	"regexp"
	"strings"
)

// universalSkipPatterns are the small, hand-picked set of noise lines
// that apply across every bank: page markers, regulator boilerplate,
// and well-known summary rows. Per-bank quirks belong in
// profile.Profile.SkipPatterns instead (§9 Open Question: "Balance"
// alone is too broad to be universal).
var universalSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page \d+( of \d+)?$`),
	regexp.MustCompile(`(?i)continued\s*\.{0,3}\s*$`),
	regexp.MustCompile(`(?i)financial services compensation scheme`),
	regexp.MustCompile(`(?i)financial conduct authority`),
	regexp.MustCompile(`(?i)prudential regulation authority`),
	regexp.MustCompile(`(?i)^total (paid|money) (in|out)\b`),
	regexp.MustCompile(`(?i)^total (payments|receipts)\b`),
	regexp.MustCompile(`(?i)^statement (number|period)\b`),
}

// SkipFilter classifies a line as transactional or noise (§4.C).
type SkipFilter struct {
	bankPatterns []*regexp.Regexp
}

// NewSkipFilter builds a filter from the profile's compiled skip
// patterns plus the small universal set.
func NewSkipFilter(bankPatterns []*regexp.Regexp) *SkipFilter {
	return &SkipFilter{bankPatterns: bankPatterns}
}

// Skip reports whether the line should be excluded from transaction
// parsing. Note that period-boundary and balance-summary detection
// must run before this is consulted (§4.C ordering rule) — the state
// machine does that, not this filter.
func (f *SkipFilter) Skip(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	for _, re := range universalSkipPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	for _, re := range f.bankPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}
