package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Reconciler walks each period's running balance, repairing the single
// most common extraction fault (a money-in/money-out direction swap)
// and falling back to a cascade recalculation when a period's own
// numbers cannot be trusted line by line (§4.H).
type Reconciler struct {
	AllowMissingBalance bool
}

// NewReconciler builds a Reconciler from the active profile's
// AllowMissingBalance flag.
func NewReconciler(allowMissingBalance bool) *Reconciler {
	return &Reconciler{AllowMissingBalance: allowMissingBalance}
}

// Reconcile mutates transactions in place (direction swaps, and in a
// cascade-recalculated period rewritten balances and confidence) and
// returns the periods annotated with their reconciliation outcome, plus
// the warnings for every swap, cascade and period-level soft-assertion
// failure.
func (r *Reconciler) Reconcile(transactions []Transaction, periods []Period) ([]Transaction, []Period, []Warning) {
	var warnings []Warning

	for pi := range periods {
		p := &periods[pi]

		if r.firstTransactionKeepsBroughtForwardUnchanged(transactions, p) {
			r.cascadeRecalculate(transactions, p)
			p.CascadeRecalculated = true
			warnings = append(warnings, Warning{
				Kind:        WarnPeriod,
				Message:     fmt.Sprintf("period %d: first transaction after the period break left the brought-forward balance unchanged; recalculated running balances from the opening balance", p.Index),
				PeriodIndex: p.Index,
			})
			p.Reconciled = r.assertPeriodTotals(transactions, p, &warnings)
			continue
		}

		running := p.OpeningBalance
		haveRunning := p.HasOpeningBalance
		mismatches := 0

		for _, txIdx := range p.Transactions {
			if txIdx < 0 || txIdx >= len(transactions) {
				continue
			}
			tx := &transactions[txIdx]
			delta := tx.MoneyIn.Sub(tx.MoneyOut)

			if !haveRunning {
				if tx.HasBalance {
					running = tx.Balance
					haveRunning = true
				}
				continue
			}

			expected := running.Add(delta)
			if !tx.HasBalance {
				running = expected
				continue
			}

			if expected.Equal(tx.Balance) {
				running = tx.Balance
				continue
			}

			// Direction-swap correction: swapping money-in/out exactly
			// reverses the delta's sign, so check whether the swapped
			// delta reconciles instead.
			swapped := running.Sub(delta)
			if swapped.Equal(tx.Balance) {
				tx.MoneyIn, tx.MoneyOut = tx.MoneyOut, tx.MoneyIn
				tx.Confidence = clampConfidence(tx.Confidence - 10)
				running = tx.Balance
				warnings = append(warnings, Warning{
					Kind:             WarnLocal,
					Message:          fmt.Sprintf("transaction %d: money in/out direction swapped to match statement balance", txIdx),
					TransactionIndex: txIdx,
					PeriodIndex:      p.Index,
					ExpectedDelta:    delta,
					ComputedDelta:    delta.Neg(),
				})
				continue
			}

			mismatches++
			running = tx.Balance
		}

		// Cascade recalculation: when more than one transaction in the
		// period disagrees with its stated balance, the per-line balance
		// column is unreliable for this period; recompute every running
		// balance from the opening balance and the extracted deltas
		// instead of trusting the (possibly OCR-corrupted) balance column.
		if mismatches > 1 && p.HasOpeningBalance {
			r.cascadeRecalculate(transactions, p)
			p.CascadeRecalculated = true
		}

		p.Reconciled = r.assertPeriodTotals(transactions, p, &warnings)
	}

	return transactions, periods, warnings
}

// firstTransactionKeepsBroughtForwardUnchanged detects the specific
// anomaly in §4.H.5: the first transaction after a period break
// carries a balance identical to the opening balance despite having a
// non-zero money in/out delta, and the following transaction's own
// stated balance would reconcile once that first delta is actually
// applied. Because only one row disagrees, the generic
// mismatches-greater-than-one cascade trigger never fires for it, so
// it needs its own check.
func (r *Reconciler) firstTransactionKeepsBroughtForwardUnchanged(transactions []Transaction, p *Period) bool {
	if !p.HasOpeningBalance || len(p.Transactions) < 2 {
		return false
	}
	firstIdx := p.Transactions[0]
	if firstIdx < 0 || firstIdx >= len(transactions) {
		return false
	}
	first := transactions[firstIdx]
	if !first.HasBalance || !first.Balance.Equal(p.OpeningBalance) {
		return false
	}
	delta := first.MoneyIn.Sub(first.MoneyOut)
	if delta.IsZero() {
		return false
	}

	secondIdx := p.Transactions[1]
	if secondIdx < 0 || secondIdx >= len(transactions) {
		return false
	}
	second := transactions[secondIdx]
	if !second.HasBalance {
		return false
	}
	corrected := p.OpeningBalance.Add(delta)
	expected := corrected.Add(second.MoneyIn).Sub(second.MoneyOut)
	return expected.Equal(second.Balance)
}

func (r *Reconciler) cascadeRecalculate(transactions []Transaction, p *Period) {
	running := p.OpeningBalance
	for _, txIdx := range p.Transactions {
		if txIdx < 0 || txIdx >= len(transactions) {
			continue
		}
		tx := &transactions[txIdx]
		delta := tx.MoneyIn.Sub(tx.MoneyOut)
		running = running.Add(delta)
		tx.Balance = running
		tx.HasBalance = true
		tx.Confidence = clampConfidence(tx.Confidence - 15)
	}
	if p.HasClosingBalance {
		p.ClosingBalance = running
	}
}

// assertPeriodTotals is a soft check: opening + net movement should
// equal closing. A mismatch is recorded as a period-scope warning but
// never fails the parse (§7 recoverable-scope).
func (r *Reconciler) assertPeriodTotals(transactions []Transaction, p *Period, warnings *[]Warning) bool {
	if !p.HasOpeningBalance || !p.HasClosingBalance {
		return false
	}
	net := decimal.Zero
	for _, txIdx := range p.Transactions {
		if txIdx < 0 || txIdx >= len(transactions) {
			continue
		}
		tx := transactions[txIdx]
		net = net.Add(tx.MoneyIn).Sub(tx.MoneyOut)
	}
	expectedClose := p.OpeningBalance.Add(net)
	if expectedClose.Equal(p.ClosingBalance) {
		return true
	}
	*warnings = append(*warnings, Warning{
		Kind:          WarnPeriod,
		Message:       fmt.Sprintf("period %d: opening balance plus net movement does not equal closing balance", p.Index),
		PeriodIndex:   p.Index,
		ExpectedDelta: expectedClose.Sub(p.OpeningBalance),
		ComputedDelta: p.ClosingBalance.Sub(p.OpeningBalance),
	})
	return false
}
