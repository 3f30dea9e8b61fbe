// Package engine implements the bank-agnostic statement parsing and
// reconciliation core: line reconstruction, column modeling, date and
// amount extraction, classification, the per-line state machine, and
// multi-period reconciliation. It consumes a token.Stream plus a
// profile.Profile and returns a StatementResult; it never touches a
// filesystem, a network socket, or os.Stdout.
package engine

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors the core can return across its API boundary (§7).
// Everything else is surfaced through StatementResult.Warnings.
var (
	ErrProfileInvalid = errors.New("engine: profile invalid")
	ErrStreamInvalid  = errors.New("engine: token stream invalid")
	ErrCancelled      = errors.New("engine: parse cancelled")
)

// TransactionType is the classified kind of a transaction (§3).
type TransactionType string

const (
	TypeCardPayment   TransactionType = "CardPayment"
	TypeDirectDebit   TransactionType = "DirectDebit"
	TypeStandingOrder TransactionType = "StandingOrder"
	TypeTransfer      TransactionType = "Transfer"
	TypeFee           TransactionType = "Fee"
	TypeInterest      TransactionType = "Interest"
	TypeATM           TransactionType = "ATM"
	TypeCredit        TransactionType = "Credit"
	TypeBroughtForward TransactionType = "BroughtForward"
	TypeCarriedForward TransactionType = "CarriedForward"
	TypePeriodBreak   TransactionType = "PeriodBreak"
	TypeOther         TransactionType = "Other"
)

// Transaction is a single emitted ledger entry (§3).
type Transaction struct {
	Date        time.Time
	HasDate     bool
	Description string
	MoneyIn     decimal.Decimal
	MoneyOut    decimal.Decimal
	Balance     decimal.Decimal
	HasBalance  bool
	TypeCode    string
	Type        TransactionType
	Confidence  int
	SourcePage  int
	SourceLine  int
}

// IsDirectional reports whether exactly one of MoneyIn/MoneyOut is
// non-zero, the normal-transaction invariant from §3.
func (t Transaction) IsDirectional() bool {
	in := !t.MoneyIn.IsZero()
	out := !t.MoneyOut.IsZero()
	return in != out
}

// WarningKind classifies a warning by recoverability (§7).
type WarningKind string

const (
	WarnLocal WarningKind = "local"  // recoverable-local
	WarnPeriod WarningKind = "period" // recoverable-scope
)

// Warning is a non-fatal issue recorded during parsing (§7).
type Warning struct {
	Kind              WarningKind
	Message           string
	TransactionIndex  int
	PeriodIndex       int
	ExpectedDelta     decimal.Decimal
	ComputedDelta     decimal.Decimal
}

// Period is a contiguous window of transactions between two brought/
// carried-forward markers (§3, GLOSSARY).
type Period struct {
	Index               int
	OpeningBalance      decimal.Decimal
	HasOpeningBalance   bool
	ClosingBalance      decimal.Decimal
	HasClosingBalance   bool
	Transactions        []int // indices into StatementResult.Transactions
	Reconciled          bool
	CascadeRecalculated bool
}

// StatementResult is the core's single output type (§3, §6.3).
type StatementResult struct {
	Transactions     []Transaction
	Periods          []Period
	OpeningBalance   decimal.Decimal
	HasOpening       bool
	ClosingBalance   decimal.Decimal
	HasClosing       bool
	Warnings         []Warning
	ConfidenceOverall int
	Partial          bool
	Success          bool
}
