package profile

// Builtin returns the registry of profiles shipped with the binary,
// one per bank the teacher's parser package hand-coded (Metro, HSBC,
// Barclays). These mirror the column names, date formats and keyword
// lists the teacher's regex-based parsers used, expressed declaratively
// instead of as bank-specific Go types.
func Builtin() (*Registry, error) {
	return NewRegistry(
		metroProfile(),
		hsbcProfile(),
		barclaysProfile(),
	)
}

func metroProfile() *Profile {
	return &Profile{
		ID:         "metro",
		Name:       "Metro Bank",
		Identifiers: []string{"Metro Bank", "METRO BANK", "metrobankonline"},
		DateFormats: []string{"02/01/2006", "02/01/06", "2 Jan 2006", "2 Jan 06"},
		PeriodBoundaryPattern: `(?i)(opening balance|balance brought forward|brought forward)`,
		ColumnNames:           []string{"Paid out", "Paid in", "Balance", "Money out", "Money in"},
		DefaultThresholds: ColumnThresholds{
			MoneyOutRightX: 400,
			MoneyInRightX:  470,
			BalanceRightX:  540,
		},
		ClassificationStrategy: StrategyHybrid,
		ClassificationConfig: ClassificationConfig{
			MoneyInKeywords:  []string{"inward payment", "direct credit", "salary", "faster payment in"},
			MoneyOutKeywords: []string{"card payment", "direct debit", "withdrawal", "outward faster payment", "standing order"},
		},
		SkipPatterns: []string{
			`(?i)registered in (england|wales)`,
			`(?i)financial conduct authority`,
			`(?i)prudential regulation`,
			`(?i)metro bank plc`,
			`(?i)one southampton row`,
		},
		FXMarkers:            []string{"USD", "EUR", "KES", "SGD"},
		AllowMissingBalance:  true,
		XTolerance:           2,
		YTolerance:           1.2,
		RequireHeaderPerPage: false,
		HeaderLookaheadLines: 8,
		TransactionTypeMap: TransactionTypeMap{
			"card payment":             "CardPayment",
			"direct debit":             "DirectDebit",
			"standing order":           "StandingOrder",
			"inward payment":           "Transfer",
			"outward faster payment":   "Transfer",
		},
	}
}

func hsbcProfile() *Profile {
	return &Profile{
		ID:         "hsbc",
		Name:       "HSBC",
		Identifiers: []string{"HSBC", "hsbc.co.uk", "HSBC UK Bank"},
		DateFormats: []string{"2 Jan 06", "2 Jan 2006", "02-Jan-06", "02/01/2006"},
		PeriodBoundaryPattern: `(?i)balance (brought|carried) forward`,
		ColumnNames:           []string{"Paid out", "Paid in", "Balance"},
		DefaultThresholds: ColumnThresholds{
			MoneyOutRightX: 390,
			MoneyInRightX:  460,
			BalanceRightX:  530,
		},
		ClassificationStrategy: StrategyColumnPosition,
		ClassificationConfig: ClassificationConfig{
			MoneyInKeywords:  []string{"credit", "salary", "interest"},
			MoneyOutKeywords: []string{"card payment", "direct debit", "atm withdrawal", "standing order"},
		},
		SkipPatterns: []string{
			`(?i)hsbc uk bank plc`,
			`(?i)page \d+ of \d+`,
		},
		FXMarkers:            []string{"USD", "EUR"},
		AllowMissingBalance:  true,
		XTolerance:           2,
		YTolerance:           1.2,
		RequireHeaderPerPage: true,
		HeaderLookaheadLines: 8,
		TransactionTypeMap: TransactionTypeMap{
			"cr gross interest": "Interest",
			"atm withdrawal":    "ATM",
			"direct debit":      "DirectDebit",
		},
	}
}

func barclaysProfile() *Profile {
	return &Profile{
		ID:         "barclays",
		Name:       "Barclays",
		Identifiers: []string{"Barclays", "BARCLAYS", "barclays.co.uk"},
		DateFormats: []string{"02/01/2006", "2 Jan 2006", "2 Jan"},
		PeriodBoundaryPattern: `(?i)(start balance|balance brought forward|balance carried forward|end balance)`,
		ColumnNames:           []string{"Money out", "Money in", "Balance"},
		DefaultThresholds: ColumnThresholds{
			MoneyOutRightX: 410,
			MoneyInRightX:  480,
			BalanceRightX:  550,
		},
		ClassificationStrategy: StrategyKeyword,
		ClassificationConfig: ClassificationConfig{
			MoneyInKeywords:  []string{"direct credit", "credit from", "bgc ", "bacs ", "refund", "interest paid", "transfer from", "faster payment"},
			MoneyOutKeywords: []string{"card payment", "direct debit", "online banking bill payment", "standing order"},
		},
		SkipPatterns: []string{
			`(?i)at a glance`,
			`(?i)your deposit is eligible`,
			`(?i)compensation scheme`,
			`(?i)swiftbic`,
			`(?i)iban gb`,
		},
		FXMarkers:            []string{"USD", "EUR", "KES"},
		AllowMissingBalance:  true,
		XTolerance:           2,
		YTolerance:           1.2,
		RequireHeaderPerPage: false,
		HeaderLookaheadLines: 8,
		TransactionTypeMap: TransactionTypeMap{
			"direct debit":   "DirectDebit",
			"standing order": "StandingOrder",
			"interest paid":  "Interest",
		},
	}
}
