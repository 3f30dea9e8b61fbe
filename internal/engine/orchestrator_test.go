package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/insightdelivered/bank-statement-converter/internal/profile"
	"github.com/insightdelivered/bank-statement-converter/internal/token"
)

func orchestratorProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		ID:                    "test",
		Name:                  "Test Bank",
		DateFormats:           []string{"02/01/2006"},
		PeriodBoundaryPattern: `(?i)(opening balance|balance carried forward)`,
		ColumnNames:           []string{"Paid out", "Paid in", "Balance"},
		DefaultThresholds: profile.ColumnThresholds{
			MoneyOutRightX: 400, MoneyInRightX: 470, BalanceRightX: 540,
		},
		ClassificationStrategy: profile.StrategyColumnPosition,
		AllowMissingBalance:    true,
	}
	if err := p.Compile(); err != nil {
		t.Fatalf("compiling test profile: %v", err)
	}
	return p
}

// linesToStream turns plain-text lines into a synthetic, already
// page/y/x-ordered token stream, one token per line.
func linesToStream(lines []string) token.Stream {
	toks := make([]token.Token, 0, len(lines))
	for i, text := range lines {
		toks = append(toks, token.Token{
			Text:      text,
			PageIndex: 0,
			X0:        0,
			X1:        float64(len(text)) * defaultAvgCharWidth,
			Y:         float64(1000 - i*10),
		})
	}
	return token.NewSliceStream(toks)
}

func TestOrchestratorRejectsNilProfile(t *testing.T) {
	o := NewCoreOrchestrator(nil)
	_, err := o.Parse(context.Background(), linesToStream([]string{"x"}), nil)
	if !errors.Is(err, ErrProfileInvalid) {
		t.Errorf("expected ErrProfileInvalid, got %v", err)
	}
}

func TestOrchestratorRejectsNilStream(t *testing.T) {
	o := NewCoreOrchestrator(nil)
	_, err := o.Parse(context.Background(), nil, orchestratorProfile(t))
	if !errors.Is(err, ErrStreamInvalid) {
		t.Errorf("expected ErrStreamInvalid, got %v", err)
	}
}

func TestOrchestratorParsesAFullStatement(t *testing.T) {
	o := NewCoreOrchestrator(nil)
	stream := linesToStream([]string{
		"Opening balance                                987.50",
		"15/01/2024 TESCO STORES                 12.50  975.00",
		"16/01/2024 SALARY                       2000.00 2975.00",
		"Balance carried forward                        2975.00",
	})

	result, err := o.Parse(context.Background(), stream, orchestratorProfile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected a successful parse")
	}
	if len(result.Periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(result.Periods))
	}
	if !result.HasOpening || !result.HasClosing {
		t.Error("expected opening and closing balances populated on the result")
	}
	if result.ConfidenceOverall <= 0 {
		t.Errorf("expected a positive overall confidence, got %d", result.ConfidenceOverall)
	}
}

func TestOrchestratorReturnsPartialResultOnCancellation(t *testing.T) {
	o := NewCoreOrchestrator(nil)
	stream := linesToStream([]string{
		"Opening balance                                987.50",
		"15/01/2024 TESCO STORES                 12.50  975.00",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.Parse(ctx, stream, orchestratorProfile(t))
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
	if !result.Partial {
		t.Error("expected the result to be marked partial")
	}
}
