// Package bankresolver picks a profile.Profile from a statement's own
// text content, the way the teacher's parser.AutoDetect chose a
// models.BankType — generalized from a fixed three-way switch to a
// scan over every registered profile's declared identifiers.
package bankresolver

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/bank-statement-converter/internal/profile"
)

// AutoDetect scans combined page text for each profile's identifier
// strings and returns the first matching profile. It returns an error
// naming every registered profile ID when nothing matches, so callers
// know what to pass via --bank.
func AutoDetect(pages []string, registry *profile.Registry) (*profile.Profile, error) {
	combined := strings.ToLower(strings.Join(pages, "\n"))

	for _, p := range registry.All() {
		for _, id := range p.Identifiers {
			if strings.Contains(combined, strings.ToLower(id)) {
				return p, nil
			}
		}
	}

	var ids []string
	for _, p := range registry.All() {
		ids = append(ids, p.ID)
	}
	return nil, fmt.Errorf("bankresolver: could not auto-detect bank from statement content; specify one of %s explicitly", strings.Join(ids, ", "))
}

// Resolve returns the named profile, or runs AutoDetect if name is empty.
func Resolve(name string, pages []string, registry *profile.Registry) (*profile.Profile, error) {
	if name == "" {
		return AutoDetect(pages, registry)
	}
	p, ok := registry.Get(strings.ToLower(name))
	if !ok {
		var ids []string
		for _, p := range registry.All() {
			ids = append(ids, p.ID)
		}
		return nil, fmt.Errorf("bankresolver: unknown bank %q; supported: %s", name, strings.Join(ids, ", "))
	}
	return p, nil
}
