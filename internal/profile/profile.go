// Package profile holds the declarative per-bank configuration (§6.2)
// that the engine reads but never mutates. Profiles are loaded once at
// startup and are safe for concurrent use by many parses.
package profile

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Strategy selects which Classifier variant a bank profile uses.
type Strategy string

const (
	StrategyColumnPosition Strategy = "column_position"
	StrategyTypeCode       Strategy = "type_code"
	StrategyKeyword        Strategy = "keyword"
	StrategyHybrid         Strategy = "hybrid"
)

// ColumnThresholds are the fallback right-edge x-values used until a
// header is seen on a page (§4.B).
type ColumnThresholds struct {
	MoneyOutRightX float64 `yaml:"money_out_right_x"`
	MoneyInRightX  float64 `yaml:"money_in_right_x"`
	BalanceRightX  float64 `yaml:"balance_right_x"`
}

// ClassificationConfig carries the strategy-specific knobs from §6.2.
type ClassificationConfig struct {
	MoneyInCodes              []string `yaml:"money_in_codes"`
	MoneyOutCodes             []string `yaml:"money_out_codes"`
	MoneyInKeywords           []string `yaml:"money_in_keywords"`
	MoneyOutKeywords          []string `yaml:"money_out_keywords"`
	TypeCodePositionThreshold float64  `yaml:"type_code_position_threshold"`
}

// TransactionTypeMap maps a type code to an enum value name (one of the
// engine.TransactionType constants). The engine looks keys up by the
// upper-cased type code found on the line only; keys are never matched
// against description keywords, so a key takes effect only when it is
// written in upper case.
type TransactionTypeMap map[string]string

// Profile is the full declarative description of one bank's statement
// layout (§6.2). All fields are immutable after Compile is called.
type Profile struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Identifiers []string `yaml:"identifiers"`

	DateFormats           []string             `yaml:"date_formats"`
	PeriodBoundaryPattern string               `yaml:"period_boundary_pattern"`
	ColumnNames           []string             `yaml:"column_names"`
	DefaultThresholds     ColumnThresholds     `yaml:"default_column_thresholds"`
	ClassificationStrategy Strategy            `yaml:"classification_strategy"`
	ClassificationConfig  ClassificationConfig `yaml:"classification_config"`
	SkipPatterns          []string             `yaml:"skip_patterns"`
	FXMarkers             []string             `yaml:"fx_markers"`
	AllowMissingBalance   bool                 `yaml:"allow_missing_balance"`
	XTolerance            float64              `yaml:"x_tolerance"`
	YTolerance            float64              `yaml:"y_tolerance"`
	RequireHeaderPerPage  bool                 `yaml:"require_header_per_page"`
	HeaderLookaheadLines  int                  `yaml:"header_lookahead_lines"`
	TransactionTypeMap    TransactionTypeMap   `yaml:"transaction_type_map"`
	AllowBothAmountsNonZero bool               `yaml:"allow_both_amounts_nonzero"`

	// compiled is populated by Compile and is nil until then.
	compiled *compiled
}

type compiled struct {
	periodBoundary *regexp.Regexp
	skipPatterns   []*regexp.Regexp
}

// Compile validates the profile, fills in defaults and pre-compiles its
// regexes. Once a profile is compiled, later calls return nil and leave
// it untouched, so the Compile call at the start of every
// CoreOrchestrator.Parse never rewrites a shared profile.
func (p *Profile) Compile() error {
	if p.compiled != nil {
		return nil
	}
	if p.ID == "" {
		return fmt.Errorf("profile: id is required")
	}
	if len(p.DateFormats) == 0 {
		return fmt.Errorf("profile %s: date_formats must not be empty", p.ID)
	}
	c := &compiled{}
	if p.PeriodBoundaryPattern != "" {
		re, err := regexp.Compile(p.PeriodBoundaryPattern)
		if err != nil {
			return fmt.Errorf("profile %s: invalid period_boundary_pattern: %w", p.ID, err)
		}
		c.periodBoundary = re
	}
	for _, pat := range p.SkipPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("profile %s: invalid skip_pattern %q: %w", p.ID, pat, err)
		}
		c.skipPatterns = append(c.skipPatterns, re)
	}
	if p.HeaderLookaheadLines <= 0 {
		p.HeaderLookaheadLines = 8
	}
	if p.YTolerance <= 0 {
		p.YTolerance = 1.2
	}
	if p.ClassificationStrategy == "" {
		p.ClassificationStrategy = StrategyColumnPosition
	}
	p.compiled = c
	return nil
}

// PeriodBoundaryRegexp returns the compiled brought/carried-forward
// pattern. Compile must have been called first.
func (p *Profile) PeriodBoundaryRegexp() *regexp.Regexp {
	if p.compiled == nil {
		return nil
	}
	return p.compiled.periodBoundary
}

// SkipRegexps returns the compiled per-bank noise patterns.
func (p *Profile) SkipRegexps() []*regexp.Regexp {
	if p.compiled == nil {
		return nil
	}
	return p.compiled.skipPatterns
}

// Registry is a read-only, concurrency-safe collection of profiles
// keyed by ID, populated once at process startup (§5).
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry builds a registry from already-compiled profiles.
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		if p.compiled == nil {
			if err := p.Compile(); err != nil {
				return nil, err
			}
		}
		if _, exists := r.profiles[p.ID]; exists {
			return nil, fmt.Errorf("registry: duplicate profile id %q", p.ID)
		}
		r.profiles[p.ID] = p
	}
	return r, nil
}

// Get returns the profile with the given ID.
func (r *Registry) Get(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// All returns every registered profile, in no particular order.
func (r *Registry) All() []*Profile {
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out
}

// LoadYAMLFile reads a YAML file of Profile definitions and returns a
// compiled Registry. Only the first YAML document in the file is read.
func LoadYAMLFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: reading %s: %w", path, err)
	}
	return LoadYAML(data)
}

// LoadYAML parses a YAML document containing a top-level `profiles:` list.
func LoadYAML(data []byte) (*Registry, error) {
	var doc struct {
		Profiles []*Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("profile: invalid yaml: %w", err)
	}
	return NewRegistry(doc.Profiles...)
}
