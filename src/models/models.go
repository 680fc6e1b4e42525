package models

// ExpenseRecord is a single imported expense row, identified by ID and
// immutable once stored. Date is "YYYY-MM-DD".
type ExpenseRecord struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// ExpenseCategory is one (category, subcategory) pair of the expense taxonomy.
type ExpenseCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Subcategory string `json:"subcategory"`
}

// ImportedMonth summarizes one bulk-imported month for the admin view.
type ImportedMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// EquityTransaction is one row of the equity ledger. Type is "buy", "sell"
// or "dividend". ProfitLoss is only meaningful for sells (realized P/L).
type EquityTransaction struct {
	ID         int64   `json:"id"`
	Symbol     string  `json:"symbol"`
	Date       string  `json:"date"`
	Type       string  `json:"type"`
	Qtty       int     `json:"qtty"`
	Price      float64 `json:"price"`
	ProfitLoss float64 `json:"profit_loss"`
}

// Stock is the wire shape of one current holding as served by
// GET /portfolio/equity.
type Stock struct {
	Symbol          string  `json:"symbol"`
	Qtty            int     `json:"qtty"`
	AvgPrice        float64 `json:"avg_price"`
	LastTradedPrice float64 `json:"lastTradedPrice"`
	Date            string  `json:"date"`
	Comment         string  `json:"comment"`
	Notes           string  `json:"notes"`
}

// Dividend is a cash dividend registered against an owned symbol.
type Dividend struct {
	ID      int64   `json:"id"`
	Symbol  string  `json:"symbol"`
	Amount  float64 `json:"amount"`
	Date    string  `json:"date"`
	Type    string  `json:"type"`
	Remarks string  `json:"remarks"`
}

// PeriodSummary is one fixed lookback window of the equity profit summary.
type PeriodSummary struct {
	TotalInvestment float64 `json:"total_investment"`
	ProfitPercent   float64 `json:"profit_percent"`
}

// EquityProfitSummary carries the three fixed periods served by
// GET /portfolio/summary.
type EquityProfitSummary struct {
	Summary6Months  PeriodSummary `json:"summary_6_months"`
	Summary12Months PeriodSummary `json:"summary_12_months"`
	Summary24Months PeriodSummary `json:"summary_24_months"`
}

// FixedDeposit is a bank fixed deposit. MaturityValue is computed at insert
// time from principal, rate and term; dates are "YYYY-MM-DD".
type FixedDeposit struct {
	ID                   int64   `json:"id"`
	BankName             string  `json:"bankName"`
	PrincipalAmount      float64 `json:"principalAmount"`
	InterestRate         float64 `json:"interestRate"`
	MaturityPeriodMonths int     `json:"maturityPeriod"`
	MaturityValue        float64 `json:"maturityValue"`
	StartDate            string  `json:"startDate"`
	MaturityDate         string  `json:"maturityDate"`
	CreatedAt            string  `json:"createdAt"`
}

// Bond is a fixed-income instrument (treasury bond or corporate debenture).
type Bond struct {
	ID            int64   `json:"id"`
	Issuer        string  `json:"issuer"`
	BondType      string  `json:"bondType"`
	Amount        float64 `json:"amount"`
	CouponRate    float64 `json:"couponRate"`
	MaturityValue float64 `json:"maturityValue"`
	IssueDate     string  `json:"issueDate"`
	MaturityDate  string  `json:"maturityDate"`
	CreatedAt     string  `json:"createdAt"`
}

// IndexFund is an index/mutual fund position valued at units * NAV.
type IndexFund struct {
	ID             int64   `json:"id"`
	FundName       string  `json:"fundName"`
	AMC            string  `json:"amc"`
	Category       string  `json:"category"`
	Units          float64 `json:"units"`
	NAV            float64 `json:"nav"`
	PurchasePrice  float64 `json:"purchasePrice"`
	InvestedAmount float64 `json:"investedAmount"`
	PurchaseDate   string  `json:"purchaseDate"`
	CreatedAt      string  `json:"createdAt"`
}

// FXDeposit is a foreign-currency deposit account.
type FXDeposit struct {
	ID           int64   `json:"id"`
	BankName     string  `json:"bankName"`
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interestRate"`
	Date         string  `json:"date"`
	CreatedAt    string  `json:"createdAt"`
}

// OtherIncome is a non-portfolio income record (rent, freelance, ...).
type OtherIncome struct {
	ID           int64   `json:"id"`
	Source       string  `json:"source"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Frequency    string  `json:"frequency"`
	Description  string  `json:"description"`
	DateReceived string  `json:"dateReceived"`
	Taxable      bool    `json:"taxable"`
	CreatedAt    string  `json:"createdAt"`
}
