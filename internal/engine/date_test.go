package engine

import (
	"testing"
	"time"
)

func TestDateEngineFullDates(t *testing.T) {
	tests := []struct {
		line      string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantRest  string
	}{
		{"15/01/2024 CARD PAYMENT", 2024, time.January, 15, "CARD PAYMENT"},
		{"1/1/24 PAYMENT", 2024, time.January, 1, "PAYMENT"},
		{"15 Jan 2024 CARD PAYMENT", 2024, time.January, 15, "CARD PAYMENT"},
		{"15-Jan-2024 PAYMENT", 2024, time.January, 15, "PAYMENT"},
		{"3rd Feb 2024 DIRECT DEBIT", 2024, time.February, 3, "DIRECT DEBIT"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			d := NewDateEngine(nil)
			res := d.Process(tt.line)
			if res.Kind != DateNew {
				t.Fatalf("expected DateNew, got %v", res.Kind)
			}
			if res.Date.Year() != tt.wantYear || res.Date.Month() != tt.wantMonth || res.Date.Day() != tt.wantDay {
				t.Errorf("got %v, want %d-%d-%d", res.Date, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if res.Remainder != tt.wantRest {
				t.Errorf("remainder: got %q, want %q", res.Remainder, tt.wantRest)
			}
		})
	}
}

func TestDateEngineSplitYearCompletion(t *testing.T) {
	d := NewDateEngine(nil)
	first := d.Process("15/01/202")
	if first.Kind != DatePendingStarted {
		t.Fatalf("expected DatePendingStarted, got %v", first.Kind)
	}
	if !d.Pending() {
		t.Fatal("expected Pending() true after split-year start")
	}

	second := d.Process("4 CARD PAYMENT")
	if second.Kind != DateCompleted {
		t.Fatalf("expected DateCompleted, got %v", second.Kind)
	}
	if second.Date.Year() != 2024 || second.Date.Month() != time.January || second.Date.Day() != 15 {
		t.Errorf("got %v, want 2024-01-15", second.Date)
	}
	if second.Remainder != "CARD PAYMENT" {
		t.Errorf("remainder: got %q", second.Remainder)
	}
	if d.Pending() {
		t.Error("expected Pending() false after completion")
	}
}

func TestDateEngineNewDateWinsOverPendingCompletion(t *testing.T) {
	warnings := []string{}
	d := NewDateEngine(func(msg string) { warnings = append(warnings, msg) })

	d.Process("15/01/202")
	if !d.Pending() {
		t.Fatal("expected pending split-year date")
	}

	res := d.Process("20/02/2024 NEW TRANSACTION")
	if res.Kind != DateNew {
		t.Fatalf("expected DateNew to win over pending completion, got %v", res.Kind)
	}
	if d.Pending() {
		t.Error("expected pending state to be discarded")
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about the discarded pending date")
	}
}

func TestDateEngineNonDigitLineLeavesPendingOutstanding(t *testing.T) {
	d := NewDateEngine(nil)
	d.Process("15/01/202")
	res := d.Process("no digit here")
	if res.Kind != DateNone {
		t.Fatalf("expected DateNone, got %v", res.Kind)
	}
	if !d.Pending() {
		t.Error("expected pending completion left outstanding")
	}
}

func TestDateEngineYearlessDateInfersFromPeriod(t *testing.T) {
	d := NewDateEngine(nil)
	d.SetPeriod(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))

	res := d.Process("20 Jan CARD PAYMENT")
	if res.Kind != DateNew {
		t.Fatalf("expected DateNew, got %v", res.Kind)
	}
	if res.Date.Year() != 2024 {
		t.Errorf("expected year inferred from period, got %d", res.Date.Year())
	}
	if res.Warning != "" {
		t.Errorf("expected no warning for an in-period date, got %q", res.Warning)
	}
}

func TestDateEngineYearlessDateCrossesYearBoundary(t *testing.T) {
	d := NewDateEngine(nil)
	// Statement period spans a year boundary: Dec 2023 -> Jan 2024.
	d.SetPeriod(time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))

	res := d.Process("28 Dec CARRIED OVER")
	if res.Kind != DateNew {
		t.Fatalf("expected DateNew, got %v", res.Kind)
	}
	if res.Date.Year() != 2023 {
		t.Errorf("expected December date resolved to period start year 2023, got %d", res.Date.Year())
	}
}

func TestDateEngineResetStateClearsPending(t *testing.T) {
	d := NewDateEngine(nil)
	d.Process("15/01/202")
	if !d.Pending() {
		t.Fatal("expected pending before reset")
	}
	d.ResetState()
	if d.Pending() {
		t.Error("expected pending cleared after ResetState")
	}
}

func TestDateEngineNoMatchReturnsDateNone(t *testing.T) {
	d := NewDateEngine(nil)
	res := d.Process("This is a continuation line with no date")
	if res.Kind != DateNone {
		t.Errorf("expected DateNone, got %v", res.Kind)
	}
}
