package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-statement-converter/internal/profile"
	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

// CoreOrchestrator wires components A through H into a single parse
// call (§5 wiring order, §4). It holds no parse-specific state between
// calls — a single instance is safe to reuse (and to call reentrantly
// from multiple goroutines, each with its own Parse invocation) per
// §5's concurrency model.
type CoreOrchestrator struct {
	Warn func(string)
}

// NewCoreOrchestrator builds an orchestrator; warn may be nil. warn
// receives the warnings raised during line reconstruction, date parsing
// and column tracking as they are produced; those are not added to
// StatementResult.Warnings. The warnings the state machine and the
// Reconciler record are returned in StatementResult.Warnings and are not
// passed to warn.
func NewCoreOrchestrator(warn func(string)) *CoreOrchestrator {
	if warn == nil {
		warn = func(string) {}
	}
	return &CoreOrchestrator{Warn: warn}
}

// Parse runs one full statement parse: line reconstruction, column
// modeling, the per-line state machine, and reconciliation. It returns
// ErrProfileInvalid or ErrStreamInvalid for malformed inputs, and
// ErrCancelled (with a best-effort partial result) if ctx is cancelled
// mid-parse (§7).
func (o *CoreOrchestrator) Parse(ctx context.Context, stream token.Stream, p *profile.Profile) (StatementResult, error) {
	if p == nil {
		return StatementResult{}, ErrProfileInvalid
	}
	if err := p.Compile(); err != nil {
		return StatementResult{}, fmt.Errorf("%w: %s", ErrProfileInvalid, err)
	}
	if stream == nil {
		return StatementResult{}, ErrStreamInvalid
	}

	reconstructor := NewLineReconstructor(p.YTolerance, o.Warn)
	lines, err := reconstructor.Reconstruct(stream)
	if err != nil {
		return StatementResult{}, fmt.Errorf("%w: %s", ErrStreamInvalid, err)
	}

	machine := NewStatementStateMachine(p, o.Warn)
	if start, end, ok := approximatePeriodWindow(lines); ok {
		machine.Dates().SetPeriod(start, end)
	}

	partial := false
	for _, line := range lines {
		select {
		case <-ctx.Done():
			partial = true
		default:
		}
		if partial {
			break
		}
		machine.Feed(line)
	}
	machine.Finish()

	transactions, periods, warnings := machine.Result()

	reconciler := NewReconciler(p.AllowMissingBalance)
	transactions, periods, reconcileWarnings := reconciler.Reconcile(transactions, periods)
	warnings = append(warnings, reconcileWarnings...)

	result := StatementResult{
		Transactions:      transactions,
		Periods:           periods,
		Warnings:          warnings,
		ConfidenceOverall: OverallConfidence(transactions, periods, warnings),
		Partial:           partial,
		Success:           len(transactions) > 0 || len(periods) > 0,
	}
	if len(periods) > 0 {
		first := periods[0]
		last := periods[len(periods)-1]
		result.OpeningBalance = firstNonZeroBalance(first.OpeningBalance, first.HasOpeningBalance)
		result.HasOpening = first.HasOpeningBalance
		result.ClosingBalance = last.ClosingBalance
		result.HasClosing = last.HasClosingBalance
	}

	if partial {
		return result, ErrCancelled
	}
	return result, nil
}

func firstNonZeroBalance(d decimal.Decimal, has bool) decimal.Decimal {
	if !has {
		return decimal.Zero
	}
	return d
}

// approximatePeriodWindow scans reconstructed lines for the earliest
// and latest fully-formed dates to seed DateEngine cross-year inference
// before the state machine has established real period boundaries
// (§4.D rule 3 depends on knowing the period in advance; §9 Open
// Question: no dedicated statement-header component exists, so the
// orchestrator derives the window from the token stream itself using a
// throwaway DateEngine scan rather than assuming a header line format).
func approximatePeriodWindow(lines []Line) (start, end time.Time, ok bool) {
	scanner := NewDateEngine(nil)
	for _, line := range lines {
		dr := scanner.Process(line.Text)
		if dr.Kind != DateNew || dr.Warning != "" {
			continue
		}
		if !ok || dr.Date.Before(start) {
			start = dr.Date
		}
		if !ok || dr.Date.After(end) {
			end = dr.Date
		}
		ok = true
	}
	return start, end, ok
}
