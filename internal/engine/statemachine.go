package engine

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bank-statement-converter/internal/profile"
)

var typeCodeToken = regexp.MustCompile(`(?:^|\s)([A-Z]{2,4})(?:\s|$)`)

// lineEvent is the classification a line resolves to, in the priority
// order of §4.G.
type lineEvent int

const (
	eventSkip lineEvent = iota
	eventPeriodBoundary
	eventNewDate
	eventYearDigitCompletion
	eventFXMeta
	eventAmountBearing
	eventContinuation
)

// pendingTxn accumulates a transaction across lines until an
// amount-bearing line completes it.
type pendingTxn struct {
	active      bool
	hasDate     bool
	dateResult  DateResult
	descLines   []string
	typeCode    string
	sourcePage  int
	sourceLine  int
}

// StatementStateMachine drives the per-line event priority from §4.G,
// accumulating transactions and period boundaries into a StatementResult.
type StatementStateMachine struct {
	profile    *profile.Profile
	dates      *DateEngine
	amounts    *AmountExtractor
	classifier Classifier
	skip       *SkipFilter
	columns    *ColumnTracker

	current     pendingTxn
	carryOver   []string // FX-meta lines awaiting the next transaction (§9 carry-over only)
	periodIndex int
	periodOpen  bool
	periodTxns  []int

	transactions []Transaction
	periods      []Period
	warnings     []Warning
}

// NewStatementStateMachine wires the per-line components from a single
// compiled profile (§5 wiring order: A→B→C→D→E→F→G).
func NewStatementStateMachine(p *profile.Profile, warn func(string)) *StatementStateMachine {
	defaults := ColumnModel{
		MoneyOutRightX: p.DefaultThresholds.MoneyOutRightX,
		MoneyInRightX:  p.DefaultThresholds.MoneyInRightX,
		BalanceRightX:  p.DefaultThresholds.BalanceRightX,
		FromDefaults:   true,
	}
	return &StatementStateMachine{
		profile:    p,
		dates:      NewDateEngine(warn),
		amounts:    NewAmountExtractor(p.FXMarkers),
		classifier: NewClassifier(p),
		skip:       NewSkipFilter(p.SkipRegexps()),
		columns:    NewColumnTracker(p.ColumnNames, p.HeaderLookaheadLines, p.RequireHeaderPerPage, defaults, warn),
	}
}

// Dates exposes the DateEngine so the orchestrator can seed the known
// statement period before feeding any lines (§4.D rule 3).
func (m *StatementStateMachine) Dates() *DateEngine {
	return m.dates
}

// Feed processes one reconstructed line. It may emit zero or more
// transactions and records warnings/period transitions internally.
func (m *StatementStateMachine) Feed(line Line) {
	model := m.columns.Observe(line)
	m.process(line, model, line.Text)
}

func (m *StatementStateMachine) process(line Line, model ColumnModel, text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	if m.profile.PeriodBoundaryRegexp() != nil && m.profile.PeriodBoundaryRegexp().MatchString(trimmed) {
		m.handlePeriodBoundary(line, model, trimmed)
		return
	}

	dr := m.dates.Process(trimmed)
	switch dr.Kind {
	case DateNew:
		m.handleNewDate(line, dr)
		if dr.Warning != "" {
			m.warn(WarnLocal, dr.Warning)
		}
		if dr.Remainder != "" {
			m.process(line, model, dr.Remainder)
		}
		return
	case DatePendingStarted:
		m.handleNewDate(line, dr)
		return
	case DateCompleted:
		m.handleDateCompletion(dr)
		if dr.Remainder != "" {
			m.process(line, model, dr.Remainder)
		}
		return
	}

	if m.amounts.HasFXMeta(trimmed) {
		if m.current.active {
			if len(m.carryOver) > 0 {
				m.current.descLines = append(m.current.descLines, m.carryOver...)
				m.carryOver = nil
			}
			m.current.descLines = append(m.current.descLines, trimmed)
			return
		}
		m.carryOver = append(m.carryOver, trimmed)
		return
	}

	amts := m.amounts.Extract(line)
	if len(amts) > 0 {
		m.handleAmountBearing(line, model, trimmed, amts)
		return
	}

	if m.skip.Skip(trimmed) {
		return
	}

	if m.current.active {
		m.current.descLines = append(m.current.descLines, trimmed)
		return
	}
	// No transaction in progress and not a recognized event: treat as
	// noise rather than fatal (§4.A/§4.C failure modes are local-only).
}

func (m *StatementStateMachine) handlePeriodBoundary(line Line, model ColumnModel, text string) {
	m.flushIncomplete()
	m.dates.ResetState()

	amts := m.amounts.Extract(line)
	var bal decimal.Decimal
	hasBal := false
	if len(amts) > 0 {
		bal = amts[len(amts)-1].Value
		hasBal = true
	}

	lower := strings.ToLower(text)
	isOpening := strings.Contains(lower, "brought forward") || strings.Contains(lower, "opening")

	if isOpening {
		m.periodIndex++
		m.periodOpen = true
		m.periodTxns = nil
		p := Period{Index: m.periodIndex, OpeningBalance: bal, HasOpeningBalance: hasBal}
		m.periods = append(m.periods, p)
	} else {
		if m.periodOpen && len(m.periods) > 0 {
			last := &m.periods[len(m.periods)-1]
			last.ClosingBalance = bal
			last.HasClosingBalance = hasBal
			last.Transactions = append(last.Transactions, m.periodTxns...)
		}
		m.periodOpen = false
	}

	txType := TypeBroughtForward
	if !isOpening {
		txType = TypeCarriedForward
	}
	tx := Transaction{
		Description: text,
		Balance:     bal,
		HasBalance:  hasBal,
		Type:        txType,
		SourcePage:  line.PageIndex,
		SourceLine:  line.Index,
		Confidence:  100,
	}
	m.transactions = append(m.transactions, tx)
}

func (m *StatementStateMachine) handleNewDate(line Line, dr DateResult) {
	m.flushIncomplete()
	m.current = pendingTxn{
		active:     true,
		hasDate:    dr.Kind == DateNew,
		dateResult: dr,
		sourcePage: line.PageIndex,
		sourceLine: line.Index,
	}
	if len(m.carryOver) > 0 {
		m.current.descLines = append(m.current.descLines, m.carryOver...)
		m.carryOver = nil
	}
}

func (m *StatementStateMachine) handleDateCompletion(dr DateResult) {
	if !m.current.active {
		return
	}
	m.current.dateResult = dr
	m.current.hasDate = true
}

func (m *StatementStateMachine) handleAmountBearing(line Line, model ColumnModel, text string, amts []Amount) {
	if !m.current.active {
		m.current = pendingTxn{active: true, sourcePage: line.PageIndex, sourceLine: line.Index}
	}

	if inlineDesc := stripAmounts(text); inlineDesc != "" {
		m.current.descLines = append(m.current.descLines, inlineDesc)
	}
	desc := strings.Join(m.current.descLines, " ")
	typeCode := extractTypeCode(text, m.profile.ClassificationStrategy)

	result := m.classifier.Classify(ClassifyInput{
		Amounts:     amts,
		Columns:     model,
		Description: desc,
		TypeCode:    typeCode,
	})

	tx := Transaction{
		Description: strings.TrimSpace(desc),
		MoneyIn:     result.MoneyIn,
		MoneyOut:    result.MoneyOut,
		Balance:     result.Balance,
		HasBalance:  result.HasBalance,
		TypeCode:    typeCode,
		Confidence:  clampConfidence(result.Confidence),
		SourcePage:  m.current.sourcePage,
		SourceLine:  m.current.sourceLine,
	}
	if m.current.hasDate {
		tx.Date = m.current.dateResult.Date
		tx.HasDate = true
	} else {
		tx.Confidence = clampConfidence(tx.Confidence - 25)
		m.warn(WarnLocal, "transaction completed without a resolved date")
	}
	tx.Type = classifyTransactionType(typeCode, tx.Description, m.profile.TransactionTypeMap)

	m.periodTxns = append(m.periodTxns, len(m.transactions))
	m.transactions = append(m.transactions, tx)
	m.current = pendingTxn{}
}

// flushIncomplete emits whatever a pending transaction has accumulated
// when a higher-priority event (new date or period boundary) pre-empts
// it, so no input text is silently discarded (§4.G, §7 no-data-loss).
func (m *StatementStateMachine) flushIncomplete() {
	if !m.current.active {
		return
	}
	if len(m.current.descLines) == 0 && !m.current.hasDate {
		m.current = pendingTxn{}
		return
	}
	tx := Transaction{
		Description: strings.TrimSpace(strings.Join(m.current.descLines, " ")),
		Confidence:  30,
		SourcePage:  m.current.sourcePage,
		SourceLine:  m.current.sourceLine,
		Type:        TypeOther,
	}
	if m.current.hasDate {
		tx.Date = m.current.dateResult.Date
		tx.HasDate = true
	}
	m.warn(WarnLocal, "transaction pre-empted before an amount was found; emitted with low confidence")
	m.periodTxns = append(m.periodTxns, len(m.transactions))
	m.transactions = append(m.transactions, tx)
	m.current = pendingTxn{}
}

// Finish flushes any trailing state and closes the last open period.
func (m *StatementStateMachine) Finish() {
	m.flushIncomplete()
	if m.periodOpen && len(m.periods) > 0 {
		last := &m.periods[len(m.periods)-1]
		last.Transactions = append(last.Transactions, m.periodTxns...)
	}
}

func (m *StatementStateMachine) warn(kind WarningKind, msg string) {
	m.warnings = append(m.warnings, Warning{Kind: kind, Message: msg, TransactionIndex: len(m.transactions) - 1, PeriodIndex: m.periodIndex})
}

// Result assembles the accumulated state into the pieces Reconciler and
// CoreOrchestrator need.
func (m *StatementStateMachine) Result() ([]Transaction, []Period, []Warning) {
	return m.transactions, m.periods, m.warnings
}

func extractTypeCode(text string, strategy profile.Strategy) string {
	if strategy != profile.StrategyTypeCode && strategy != profile.StrategyHybrid {
		return ""
	}
	m := typeCodeToken.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func classifyTransactionType(typeCode, description string, typeMap profile.TransactionTypeMap) TransactionType {
	if typeCode != "" {
		if name, ok := typeMap[strings.ToUpper(typeCode)]; ok {
			return TransactionType(name)
		}
	}
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "direct debit"):
		return TypeDirectDebit
	case strings.Contains(lower, "standing order"):
		return TypeStandingOrder
	case strings.Contains(lower, "atm") || strings.Contains(lower, "cash withdrawal"):
		return TypeATM
	case strings.Contains(lower, "interest"):
		return TypeInterest
	case strings.Contains(lower, "fee") || strings.Contains(lower, "charge"):
		return TypeFee
	case strings.Contains(lower, "transfer"):
		return TypeTransfer
	case strings.Contains(lower, "card payment") || strings.Contains(lower, "contactless"):
		return TypeCardPayment
	default:
		return TypeOther
	}
}

// stripAmounts removes every matched money figure from text, collapsing
// the surrounding whitespace, to recover the descriptive words that
// shared a line with the amounts (§4.G event 5: "amount-bearing line").
func stripAmounts(text string) string {
	stripped := amountPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(stripped), " ")
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
