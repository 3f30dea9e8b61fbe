package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-statement-converter/internal/profile"
)

func amt(v string, x float64) Amount {
	return Amount{Value: decimal.RequireFromString(v), RightX: x, HasX: true}
}

func TestColumnPositionClassifierAssignsByRightEdge(t *testing.T) {
	c := &columnPositionClassifier{}
	cols := ColumnModel{MoneyOutRightX: 400, MoneyInRightX: 470, BalanceRightX: 540}
	res := c.Classify(ClassifyInput{
		Amounts: []Amount{amt("12.50", 390), amt("987.50", 535)},
		Columns: cols,
	})
	if !res.MoneyOut.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("expected money out 12.50, got %s", res.MoneyOut)
	}
	if !res.Balance.Equal(decimal.RequireFromString("987.50")) || !res.HasBalance {
		t.Errorf("expected balance 987.50, got %s (has=%v)", res.Balance, res.HasBalance)
	}
	if res.Confidence != 100 {
		t.Errorf("expected full confidence, got %d", res.Confidence)
	}
}

func TestColumnPositionClassifierNoAmountsZeroConfidence(t *testing.T) {
	c := &columnPositionClassifier{}
	res := c.Classify(ClassifyInput{Columns: ColumnModel{MoneyOutRightX: 400, MoneyInRightX: 470, BalanceRightX: 540}})
	if res.Confidence != 0 {
		t.Errorf("expected 0 confidence with no amounts, got %d", res.Confidence)
	}
}

func TestTypeCodeClassifierUsesConfiguredCodes(t *testing.T) {
	cfg := profile.ClassificationConfig{MoneyInCodes: []string{"CR"}, MoneyOutCodes: []string{"DEB"}}
	c := &typeCodeClassifier{cfg: cfg}

	res := c.Classify(ClassifyInput{Amounts: []Amount{amt("50.00", 0)}, TypeCode: "DEB"})
	if !res.MoneyOut.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("expected money out from DEB code, got %s", res.MoneyOut)
	}
	if res.Confidence != 100 {
		t.Errorf("expected full confidence for a known code, got %d", res.Confidence)
	}
}

func TestTypeCodeClassifierUnknownCodeFallsBackToSign(t *testing.T) {
	cfg := profile.ClassificationConfig{MoneyInCodes: []string{"CR"}, MoneyOutCodes: []string{"DEB"}}
	c := &typeCodeClassifier{cfg: cfg}

	res := c.Classify(ClassifyInput{Amounts: []Amount{amt("-50.00", 0)}, TypeCode: "XYZ"})
	if !res.MoneyOut.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("expected negative amount to fall back to money out, got %s", res.MoneyOut)
	}
	if res.Confidence != 70 {
		t.Errorf("expected confidence penalty for unknown code, got %d", res.Confidence)
	}
}

func TestKeywordClassifierMatchesDescription(t *testing.T) {
	cfg := profile.ClassificationConfig{
		MoneyInKeywords:  []string{"salary", "direct credit"},
		MoneyOutKeywords: []string{"card payment", "direct debit"},
	}
	c := &keywordClassifier{cfg: cfg}

	res := c.Classify(ClassifyInput{Amounts: []Amount{amt("2000.00", 0)}, Description: "MONTHLY SALARY"})
	if !res.MoneyIn.Equal(decimal.RequireFromString("2000.00")) {
		t.Errorf("expected salary keyword to classify as money in, got %s", res.MoneyIn)
	}
	if res.Confidence != 90 {
		t.Errorf("expected full keyword confidence, got %d", res.Confidence)
	}
}

func TestKeywordClassifierNoKeywordFallsBackToSignWithPenalty(t *testing.T) {
	cfg := profile.ClassificationConfig{}
	c := &keywordClassifier{cfg: cfg}

	res := c.Classify(ClassifyInput{Amounts: []Amount{amt("-12.50", 0)}, Description: "UNKNOWN MERCHANT"})
	if !res.MoneyOut.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("expected negative sign fallback, got %s", res.MoneyOut)
	}
	if res.Confidence != 70 {
		t.Errorf("expected confidence penalty, got %d", res.Confidence)
	}
}

func TestHybridClassifierPrefersTypeCodeThenKeywordThenColumn(t *testing.T) {
	cfg := profile.ClassificationConfig{
		MoneyInCodes:     []string{"CR"},
		MoneyOutCodes:    []string{"DEB"},
		MoneyInKeywords:  []string{"salary"},
		MoneyOutKeywords: []string{"card payment"},
	}
	p := &profile.Profile{ClassificationStrategy: profile.StrategyHybrid, ClassificationConfig: cfg}
	c := NewClassifier(p)

	byCode := c.Classify(ClassifyInput{Amounts: []Amount{amt("10.00", 0)}, TypeCode: "DEB"})
	if !byCode.MoneyOut.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected type-code path to win, got %+v", byCode)
	}

	byKeyword := c.Classify(ClassifyInput{Amounts: []Amount{amt("10.00", 0)}, Description: "SALARY PAYMENT"})
	if !byKeyword.MoneyIn.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected keyword path to win when no type code, got %+v", byKeyword)
	}

	byColumn := c.Classify(ClassifyInput{
		Amounts: []Amount{amt("10.00", 390)},
		Columns: ColumnModel{MoneyOutRightX: 400, MoneyInRightX: 470, BalanceRightX: 540},
	})
	if !byColumn.MoneyOut.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected column fallback when neither code nor keyword match, got %+v", byColumn)
	}
}
