package engine

// OverallConfidence combines per-transaction confidence with
// period-level reconciliation health into the single score reported on
// StatementResult (§4.I). It is a weighted mean of the transaction
// scores, adjusted by deductions for unreconciled periods and a small
// bonus when every period balances cleanly.
func OverallConfidence(transactions []Transaction, periods []Period, warnings []Warning) int {
	if len(transactions) == 0 {
		return 0
	}

	sum := 0
	for _, tx := range transactions {
		sum += tx.Confidence
	}
	mean := sum / len(transactions)

	if len(periods) > 0 {
		reconciledCount := 0
		for _, p := range periods {
			if p.Reconciled {
				reconciledCount++
			}
		}
		ratio := float64(reconciledCount) / float64(len(periods))
		switch {
		case ratio == 1.0:
			mean += 5
		case ratio >= 0.5:
			// no adjustment
		default:
			mean -= 20
		}
	}

	scopeWarnings := 0
	for _, w := range warnings {
		if w.Kind == WarnPeriod {
			scopeWarnings++
		}
	}
	mean -= scopeWarnings * 5

	return clampConfidence(mean)
}
