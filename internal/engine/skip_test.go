package engine

import (
	"regexp"
	"testing"
)

func TestSkipFilterUniversalPatterns(t *testing.T) {
	f := NewSkipFilter(nil)
	tests := []struct {
		line string
		want bool
	}{
		{"Page 2 of 5", true},
		{"continued...", true},
		{"Financial Conduct Authority", true},
		{"Total Money Out", true},
		{"", true},
		{"   ", true},
		{"15/01/2024 CARD PAYMENT 12.50 987.50", false},
	}
	for _, tt := range tests {
		if got := f.Skip(tt.line); got != tt.want {
			t.Errorf("Skip(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSkipFilterBankSpecificPatterns(t *testing.T) {
	f := NewSkipFilter([]*regexp.Regexp{regexp.MustCompile(`(?i)metro bank plc`)})
	if !f.Skip("Metro Bank PLC, registered in England") {
		t.Error("expected bank-specific pattern to be skipped")
	}
	if f.Skip("15/01/2024 CARD PAYMENT 12.50") {
		t.Error("did not expect an ordinary transaction line to be skipped")
	}
}
