package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-statement-converter/internal/profile"
)

// ClassifyInput bundles everything a Classifier strategy needs to
// assign extracted amounts to money-in/money-out/balance (§4.F).
type ClassifyInput struct {
	Amounts     []Amount
	Columns     ColumnModel
	Description string
	TypeCode    string
}

// ClassifyResult is a strategy's verdict.
type ClassifyResult struct {
	MoneyIn      decimal.Decimal
	MoneyOut     decimal.Decimal
	Balance      decimal.Decimal
	HasBalance   bool
	Confidence   int
	Warning      string
	StrategyUsed profile.Strategy
}

// Classifier assigns extracted amounts to their ledger columns (§4.F).
type Classifier interface {
	Classify(in ClassifyInput) ClassifyResult
}

// NewClassifier builds the Classifier named by the profile's
// ClassificationStrategy.
func NewClassifier(p *profile.Profile) Classifier {
	switch p.ClassificationStrategy {
	case profile.StrategyTypeCode:
		return &typeCodeClassifier{cfg: p.ClassificationConfig}
	case profile.StrategyKeyword:
		return &keywordClassifier{cfg: p.ClassificationConfig}
	case profile.StrategyHybrid:
		return &hybridClassifier{
			typeCode: &typeCodeClassifier{cfg: p.ClassificationConfig},
			keyword:  &keywordClassifier{cfg: p.ClassificationConfig},
			column:   &columnPositionClassifier{},
		}
	default:
		return &columnPositionClassifier{}
	}
}

// columnPositionClassifier assigns amounts by their right-edge
// x-coordinate relative to the current ColumnModel (§4.B, §4.F).
type columnPositionClassifier struct{}

func (c *columnPositionClassifier) Classify(in ClassifyInput) ClassifyResult {
	res := ClassifyResult{StrategyUsed: profile.StrategyColumnPosition, Confidence: 100}
	if len(in.Amounts) == 0 {
		res.Confidence = 0
		return res
	}
	outIn, inBalance := in.Columns.Thresholds()

	assigned := 0
	for _, a := range in.Amounts {
		if !a.HasX {
			res.Confidence -= 20
			continue
		}
		switch {
		case a.RightX <= outIn:
			res.MoneyOut = a.Value.Abs()
			assigned++
		case a.RightX <= inBalance:
			res.MoneyIn = a.Value.Abs()
			assigned++
		default:
			res.Balance = a.Value
			res.HasBalance = true
			assigned++
		}
	}
	if assigned == 0 {
		res.Confidence = 0
	} else if assigned < len(in.Amounts) {
		res.Confidence -= 15
	}
	return res
}

// typeCodeClassifier assigns direction from an explicit transaction
// type code column (e.g. Barclays/HSBC "DEB"/"CR" codes), §4.F.
type typeCodeClassifier struct {
	cfg profile.ClassificationConfig
}

func (c *typeCodeClassifier) Classify(in ClassifyInput) ClassifyResult {
	res := ClassifyResult{StrategyUsed: profile.StrategyTypeCode, Confidence: 100}
	if len(in.Amounts) == 0 {
		res.Confidence = 0
		return res
	}
	code := strings.ToUpper(strings.TrimSpace(in.TypeCode))
	isIn := containsCode(c.cfg.MoneyInCodes, code)
	isOut := containsCode(c.cfg.MoneyOutCodes, code)

	primary := in.Amounts[0]
	switch {
	case isIn && !isOut:
		res.MoneyIn = primary.Value.Abs()
	case isOut && !isIn:
		res.MoneyOut = primary.Value.Abs()
	default:
		res.Confidence -= 30
		if primary.Value.IsNegative() {
			res.MoneyOut = primary.Value.Abs()
		} else {
			res.MoneyIn = primary.Value.Abs()
		}
	}
	if len(in.Amounts) > 1 {
		res.Balance = in.Amounts[len(in.Amounts)-1].Value
		res.HasBalance = true
	}
	return res
}

// keywordClassifier assigns direction from description keywords
// (§4.F), used by banks whose statements carry no reliable column
// geometry or type code (e.g. narrow-format exports).
type keywordClassifier struct {
	cfg profile.ClassificationConfig
}

func (c *keywordClassifier) Classify(in ClassifyInput) ClassifyResult {
	res := ClassifyResult{StrategyUsed: profile.StrategyKeyword, Confidence: 90}
	if len(in.Amounts) == 0 {
		res.Confidence = 0
		return res
	}
	desc := strings.ToLower(in.Description)
	isIn := containsAnyKeyword(desc, c.cfg.MoneyInKeywords)
	isOut := containsAnyKeyword(desc, c.cfg.MoneyOutKeywords)

	primary := in.Amounts[0]
	switch {
	case isIn && !isOut:
		res.MoneyIn = primary.Value.Abs()
	case isOut && !isIn:
		res.MoneyOut = primary.Value.Abs()
	case primary.Value.IsNegative():
		res.MoneyOut = primary.Value.Abs()
		res.Confidence -= 20
	default:
		res.MoneyIn = primary.Value.Abs()
		res.Confidence -= 20
	}
	if len(in.Amounts) > 1 {
		res.Balance = in.Amounts[len(in.Amounts)-1].Value
		res.HasBalance = true
	}
	return res
}

// hybridClassifier tries type code, then keyword, then column position,
// taking the first strategy that produces a directional result with
// full confidence (§4.F "Hybrid").
type hybridClassifier struct {
	typeCode *typeCodeClassifier
	keyword  *keywordClassifier
	column   *columnPositionClassifier
}

func (c *hybridClassifier) Classify(in ClassifyInput) ClassifyResult {
	if in.TypeCode != "" {
		if r := c.typeCode.Classify(in); r.Confidence >= 100 {
			r.StrategyUsed = profile.StrategyHybrid
			return r
		}
	}
	if in.Description != "" {
		if r := c.keyword.Classify(in); r.Confidence >= 90 {
			r.StrategyUsed = profile.StrategyHybrid
			return r
		}
	}
	r := c.column.Classify(in)
	r.StrategyUsed = profile.StrategyHybrid
	return r
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

func containsAnyKeyword(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(haystack, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
