package engine

import "testing"

func TestOverallConfidenceZeroTransactionsReturnsZero(t *testing.T) {
	if got := OverallConfidence(nil, nil, nil); got != 0 {
		t.Errorf("expected 0 for no transactions, got %d", got)
	}
}

func TestOverallConfidenceMeansPerTransactionScores(t *testing.T) {
	txs := []Transaction{{Confidence: 100}, {Confidence: 80}}
	got := OverallConfidence(txs, nil, nil)
	if got != 90 {
		t.Errorf("expected mean 90 with no periods, got %d", got)
	}
}

func TestOverallConfidenceFullyReconciledBonus(t *testing.T) {
	txs := []Transaction{{Confidence: 90}, {Confidence: 90}}
	periods := []Period{{Reconciled: true}, {Reconciled: true}}
	got := OverallConfidence(txs, periods, nil)
	if got != 95 {
		t.Errorf("expected mean 90 + 5 bonus = 95, got %d", got)
	}
}

func TestOverallConfidenceMajorityReconciledNoAdjustment(t *testing.T) {
	txs := []Transaction{{Confidence: 90}, {Confidence: 90}}
	periods := []Period{{Reconciled: true}, {Reconciled: false}}
	got := OverallConfidence(txs, periods, nil)
	if got != 90 {
		t.Errorf("expected no adjustment at 50%% reconciled ratio, got %d", got)
	}
}

func TestOverallConfidenceMinorityReconciledPenalty(t *testing.T) {
	txs := []Transaction{{Confidence: 90}, {Confidence: 90}, {Confidence: 90}}
	periods := []Period{{Reconciled: true}, {Reconciled: false}, {Reconciled: false}}
	got := OverallConfidence(txs, periods, nil)
	if got != 70 {
		t.Errorf("expected mean 90 - 20 penalty = 70, got %d", got)
	}
}

func TestOverallConfidenceDeductsPerPeriodWarning(t *testing.T) {
	txs := []Transaction{{Confidence: 90}}
	periods := []Period{{Reconciled: true}}
	warnings := []Warning{{Kind: WarnPeriod}, {Kind: WarnPeriod}, {Kind: WarnLocal}}
	got := OverallConfidence(txs, periods, warnings)
	// mean 90 + 5 bonus - (2 * 5) = 85
	if got != 85 {
		t.Errorf("expected 85 after two period-scope warnings, got %d", got)
	}
}

func TestOverallConfidenceClampsToZeroAndHundred(t *testing.T) {
	low := OverallConfidence(
		[]Transaction{{Confidence: 0}},
		[]Period{{Reconciled: false}},
		[]Warning{{Kind: WarnPeriod}, {Kind: WarnPeriod}, {Kind: WarnPeriod}, {Kind: WarnPeriod}, {Kind: WarnPeriod}},
	)
	if low != 0 {
		t.Errorf("expected confidence clamped to 0, got %d", low)
	}

	high := OverallConfidence([]Transaction{{Confidence: 100}}, []Period{{Reconciled: true}}, nil)
	if high != 100 {
		t.Errorf("expected confidence clamped to 100, got %d", high)
	}
}
