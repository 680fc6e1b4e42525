package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/finboard/backend/src/database"
	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/reports"
	"github.com/username/finboard/backend/src/utils"
)

const (
	ckEquityHoldings = "res_equity_holdings"
	ckProfitSummary  = "agg_equity_profit_summary"
)

// position is the running state while replaying the equity ledger.
type position struct {
	qtty     int
	avgPrice float64
	lastDate string
}

type portfolioServiceImpl struct {
	reportCache *cache.Cache
	now         func() time.Time
}

func NewPortfolioService(reportCache *cache.Cache) PortfolioService {
	return &portfolioServiceImpl{reportCache: reportCache, now: time.Now}
}

// replayLedger folds the equity ledger into per-symbol positions using
// weighted average cost. Buys move the average, sells only reduce quantity.
func replayLedger(ctx context.Context) (map[string]*position, error) {
	return replayLedgerBefore(ctx, "")
}

// replayLedgerBefore replays only rows dated strictly before the cutoff
// (exclusive); an empty cutoff replays everything. Used to value opening
// positions at the start of a lookback window.
func replayLedgerBefore(ctx context.Context, cutoff string) (map[string]*position, error) {
	query := `SELECT symbol, date, type, qtty, price FROM equity_transactions`
	args := []any{}
	if cutoff != "" {
		query += ` WHERE date < ?`
		args = append(args, cutoff)
	}
	query += ` ORDER BY date, id`

	rows, err := database.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error reading equity ledger: %w", err)
	}
	defer rows.Close()

	positions := make(map[string]*position)
	for rows.Next() {
		var symbol, date, txType string
		var qtty int
		var price float64
		if err := rows.Scan(&symbol, &date, &txType, &qtty, &price); err != nil {
			return nil, fmt.Errorf("error scanning ledger row: %w", err)
		}

		pos := positions[symbol]
		if pos == nil {
			pos = &position{}
			positions[symbol] = pos
		}
		pos.lastDate = date

		switch txType {
		case "buy":
			totalCost := pos.avgPrice*float64(pos.qtty) + price*float64(qtty)
			pos.qtty += qtty
			if pos.qtty > 0 {
				pos.avgPrice = totalCost / float64(pos.qtty)
			}
		case "sell":
			pos.qtty -= qtty
			if pos.qtty <= 0 {
				pos.qtty = 0
				pos.avgPrice = 0
			}
		}
	}
	return positions, rows.Err()
}

// Holdings returns every open position joined with its note and last traded
// price, cached until the next ledger mutation.
func (s *portfolioServiceImpl) Holdings(ctx context.Context) ([]models.Stock, error) {
	if cached, found := s.reportCache.Get(ckEquityHoldings); found {
		logger.L.Debug("Cache hit for equity holdings")
		return cached.([]models.Stock), nil
	}
	logger.L.Info("Cache miss for equity holdings, replaying ledger")

	positions, err := replayLedger(ctx)
	if err != nil {
		return nil, err
	}

	holdings := []models.Stock{}
	for symbol, pos := range positions {
		if pos.qtty <= 0 {
			continue
		}
		stock := models.Stock{
			Symbol:   symbol,
			Qtty:     pos.qtty,
			AvgPrice: utils.RoundFloat(pos.avgPrice, 2),
			Date:     pos.lastDate,
		}

		err := database.DB.QueryRowContext(ctx,
			`SELECT price FROM last_traded_prices WHERE symbol = ?`, symbol).Scan(&stock.LastTradedPrice)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("error reading last traded price for %s: %w", symbol, err)
		}

		err = database.DB.QueryRowContext(ctx,
			`SELECT comment, notes FROM equity_notes WHERE symbol = ?`, symbol).Scan(&stock.Comment, &stock.Notes)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("error reading note for %s: %w", symbol, err)
		}

		holdings = append(holdings, stock)
	}

	// Stable output order for the dashboard table.
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	s.reportCache.Set(ckEquityHoldings, holdings, cache.NoExpiration)
	return holdings, nil
}

func (s *portfolioServiceImpl) Buy(ctx context.Context, symbol string, qtty int, price float64, date string) error {
	if err := validateTrade(symbol, qtty, price, date); err != nil {
		return err
	}

	_, err := database.DB.ExecContext(ctx,
		`INSERT INTO equity_transactions (symbol, date, type, qtty, price) VALUES (?, ?, 'buy', ?, ?)`,
		symbol, date, qtty, price)
	if err != nil {
		return fmt.Errorf("error recording buy: %w", err)
	}

	s.invalidateCaches()
	logger.L.Info("Recorded buy", "symbol", symbol, "qtty", qtty, "price", price)
	return nil
}

// Sell validates against the currently held quantity, records the sell and
// realizes (sellPrice - avgPrice) * qtty into the ledger row.
func (s *portfolioServiceImpl) Sell(ctx context.Context, symbol string, qtty int, price float64, date string) (float64, error) {
	if err := validateTrade(symbol, qtty, price, date); err != nil {
		return 0, err
	}

	positions, err := replayLedger(ctx)
	if err != nil {
		return 0, err
	}
	pos, ok := positions[symbol]
	if !ok || pos.qtty == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if qtty > pos.qtty {
		return 0, fmt.Errorf("%w: have %d, selling %d", ErrInsufficientQty, pos.qtty, qtty)
	}

	profitLoss := (price - pos.avgPrice) * float64(qtty)
	_, err = database.DB.ExecContext(ctx,
		`INSERT INTO equity_transactions (symbol, date, type, qtty, price, profit_loss) VALUES (?, ?, 'sell', ?, ?, ?)`,
		symbol, date, qtty, price, profitLoss)
	if err != nil {
		return 0, fmt.Errorf("error recording sell: %w", err)
	}

	s.invalidateCaches()
	logger.L.Info("Recorded sell", "symbol", symbol, "qtty", qtty, "price", price, "profitLoss", profitLoss)
	return utils.RoundFloat(profitLoss, 2), nil
}

func (s *portfolioServiceImpl) Transactions(ctx context.Context) ([]models.EquityTransaction, error) {
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, symbol, date, type, qtty, price, profit_loss
		 FROM equity_transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.EquityTransaction{}
	for rows.Next() {
		var tx models.EquityTransaction
		if err := rows.Scan(&tx.ID, &tx.Symbol, &tx.Date, &tx.Type, &tx.Qtty, &tx.Price, &tx.ProfitLoss); err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SymbolTransactions returns the full ledger for one symbol, newest first.
func (s *portfolioServiceImpl) SymbolTransactions(ctx context.Context, symbol string) ([]models.EquityTransaction, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}

	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, symbol, date, type, qtty, price, profit_loss
		 FROM equity_transactions WHERE symbol = ? ORDER BY date DESC, id DESC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("error querying symbol transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.EquityTransaction{}
	for rows.Next() {
		var tx models.EquityTransaction
		if err := rows.Scan(&tx.ID, &tx.Symbol, &tx.Date, &tx.Type, &tx.Qtty, &tx.Price, &tx.ProfitLoss); err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *portfolioServiceImpl) UpsertNote(ctx context.Context, symbol, comment, notes string) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}

	_, err := database.DB.ExecContext(ctx,
		`INSERT INTO equity_notes (symbol, comment, notes) VALUES (?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET comment = excluded.comment, notes = excluded.notes, updated_at = CURRENT_TIMESTAMP`,
		symbol, comment, notes)
	if err != nil {
		return fmt.Errorf("error upserting note: %w", err)
	}

	s.reportCache.Delete(ckEquityHoldings)
	return nil
}

func (s *portfolioServiceImpl) SetLastTradedPrice(ctx context.Context, symbol string, price float64) error {
	if symbol == "" || price < 0 {
		return fmt.Errorf("%w: symbol and non-negative price required", ErrInvalidInput)
	}

	_, err := database.DB.ExecContext(ctx,
		`INSERT INTO last_traded_prices (symbol, price) VALUES (?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET price = excluded.price, updated_at = CURRENT_TIMESTAMP`,
		symbol, price)
	if err != nil {
		return fmt.Errorf("error updating last traded price: %w", err)
	}

	s.reportCache.Delete(ckEquityHoldings)
	return nil
}

// ProfitSummary computes performance over the fixed 6/12/24 month lookback
// windows. Investment is the opening positions' cost basis plus buys inside
// the window; profit is realized P/L plus dividends inside the window.
func (s *portfolioServiceImpl) ProfitSummary(ctx context.Context) (*models.EquityProfitSummary, error) {
	if cached, found := s.reportCache.Get(ckProfitSummary); found {
		logger.L.Debug("Cache hit for profit summary")
		return cached.(*models.EquityProfitSummary), nil
	}

	now := s.now()
	summary := &models.EquityProfitSummary{}
	windows := []struct {
		months int
		out    *models.PeriodSummary
	}{
		{6, &summary.Summary6Months},
		{12, &summary.Summary12Months},
		{24, &summary.Summary24Months},
	}
	for _, w := range windows {
		ps, err := s.periodSummary(ctx, now.AddDate(0, -w.months, 0))
		if err != nil {
			return nil, err
		}
		*w.out = ps
	}

	s.reportCache.Set(ckProfitSummary, summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *portfolioServiceImpl) periodSummary(ctx context.Context, since time.Time) (models.PeriodSummary, error) {
	cutoff := since.Format(utils.ISODateFormat)

	opening, err := replayLedgerBefore(ctx, cutoff)
	if err != nil {
		return models.PeriodSummary{}, err
	}
	var investment float64
	for _, pos := range opening {
		investment += pos.avgPrice * float64(pos.qtty)
	}

	var buys, realized, dividends sql.NullFloat64
	err = database.DB.QueryRowContext(ctx,
		`SELECT
		   (SELECT SUM(qtty * price) FROM equity_transactions WHERE type = 'buy' AND date >= ?),
		   (SELECT SUM(profit_loss) FROM equity_transactions WHERE type = 'sell' AND date >= ?),
		   (SELECT SUM(amount) FROM dividends WHERE date >= ?)`,
		cutoff, cutoff, cutoff).Scan(&buys, &realized, &dividends)
	if err != nil {
		return models.PeriodSummary{}, fmt.Errorf("error aggregating period: %w", err)
	}

	investment += buys.Float64
	profit := realized.Float64 + dividends.Float64

	var percent float64
	if investment > 0 {
		percent = profit / investment * 100
	}
	return models.PeriodSummary{
		TotalInvestment: utils.RoundFloat(investment, 2),
		ProfitPercent:   utils.RoundFloat(percent, 2),
	}, nil
}

func (s *portfolioServiceImpl) RecordDividend(ctx context.Context, d models.Dividend) error {
	if d.Symbol == "" || d.Amount <= 0 || d.Date == "" {
		return fmt.Errorf("%w: symbol, positive amount and date required", ErrInvalidInput)
	}
	if d.Type == "" {
		d.Type = "cash"
	}

	_, err := database.DB.ExecContext(ctx,
		`INSERT INTO dividends (symbol, amount, date, type, remarks) VALUES (?, ?, ?, ?, ?)`,
		d.Symbol, d.Amount, d.Date, d.Type, d.Remarks)
	if err != nil {
		return fmt.Errorf("error recording dividend: %w", err)
	}
	s.reportCache.Delete(ckProfitSummary)
	logger.L.Info("Recorded dividend", "symbol", d.Symbol, "amount", d.Amount)
	return nil
}

// OwnedDividends returns dividends restricted to currently held symbols,
// matching the dashboard's "my dividends" view.
func (s *portfolioServiceImpl) OwnedDividends(ctx context.Context) ([]models.Dividend, error) {
	positions, err := replayLedger(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, symbol, amount, date, type, remarks FROM dividends ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying dividends: %w", err)
	}
	defer rows.Close()

	dividends := []models.Dividend{}
	for rows.Next() {
		var d models.Dividend
		if err := rows.Scan(&d.ID, &d.Symbol, &d.Amount, &d.Date, &d.Type, &d.Remarks); err != nil {
			return nil, fmt.Errorf("error scanning dividend: %w", err)
		}
		if pos, ok := positions[d.Symbol]; ok && pos.qtty > 0 {
			dividends = append(dividends, d)
		}
	}
	return dividends, rows.Err()
}

func (s *portfolioServiceImpl) FixedDeposits(ctx context.Context) ([]models.FixedDeposit, error) {
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, bank_name, principal, interest_rate, maturity_period_months, maturity_value, start_date, maturity_date, created_at
		 FROM fixed_deposits ORDER BY maturity_date, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying fixed deposits: %w", err)
	}
	defer rows.Close()

	fds := []models.FixedDeposit{}
	for rows.Next() {
		var fd models.FixedDeposit
		if err := rows.Scan(&fd.ID, &fd.BankName, &fd.PrincipalAmount, &fd.InterestRate, &fd.MaturityPeriodMonths,
			&fd.MaturityValue, &fd.StartDate, &fd.MaturityDate, &fd.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning fixed deposit: %w", err)
		}
		fds = append(fds, fd)
	}
	return fds, rows.Err()
}

// AddFixedDeposit computes the maturity value from principal, rate and the
// simple-interest day count between start and maturity, then stores the row.
func (s *portfolioServiceImpl) AddFixedDeposit(ctx context.Context, fd models.FixedDeposit) (*models.FixedDeposit, error) {
	if fd.BankName == "" || fd.PrincipalAmount <= 0 {
		return nil, fmt.Errorf("%w: bank name and positive principal required", ErrInvalidInput)
	}
	start, err := utils.ParseISODate(fd.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrInvalidInput, fd.StartDate)
	}
	maturity, err := utils.ParseISODate(fd.MaturityDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid maturity date %q", ErrInvalidInput, fd.MaturityDate)
	}
	if !maturity.After(start) {
		return nil, fmt.Errorf("%w: maturity date must follow start date", ErrInvalidInput)
	}

	days := int(maturity.Sub(start).Hours() / 24)
	fd.MaturityValue = utils.RoundFloat(reports.MaturityValue(fd.PrincipalAmount, fd.InterestRate, days), 2)
	if fd.MaturityPeriodMonths == 0 {
		fd.MaturityPeriodMonths = days / 30
	}

	res, err := database.DB.ExecContext(ctx,
		`INSERT INTO fixed_deposits (bank_name, principal, interest_rate, maturity_period_months, maturity_value, start_date, maturity_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fd.BankName, fd.PrincipalAmount, fd.InterestRate, fd.MaturityPeriodMonths, fd.MaturityValue, fd.StartDate, fd.MaturityDate)
	if err != nil {
		return nil, fmt.Errorf("error inserting fixed deposit: %w", err)
	}
	fd.ID, _ = res.LastInsertId()
	fd.CreatedAt = s.now().Format(time.RFC3339)
	return &fd, nil
}

func (s *portfolioServiceImpl) Bonds(ctx context.Context) ([]models.Bond, error) {
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, issuer, bond_type, amount, coupon_rate, maturity_value, issue_date, maturity_date, created_at
		 FROM bonds ORDER BY maturity_date, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying bonds: %w", err)
	}
	defer rows.Close()

	bonds := []models.Bond{}
	for rows.Next() {
		var b models.Bond
		if err := rows.Scan(&b.ID, &b.Issuer, &b.BondType, &b.Amount, &b.CouponRate,
			&b.MaturityValue, &b.IssueDate, &b.MaturityDate, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning bond: %w", err)
		}
		bonds = append(bonds, b)
	}
	return bonds, rows.Err()
}

func (s *portfolioServiceImpl) AddBond(ctx context.Context, b models.Bond) (*models.Bond, error) {
	if b.Issuer == "" || b.Amount <= 0 {
		return nil, fmt.Errorf("%w: issuer and positive amount required", ErrInvalidInput)
	}
	issue, err := utils.ParseISODate(b.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid issue date %q", ErrInvalidInput, b.IssueDate)
	}
	maturity, err := utils.ParseISODate(b.MaturityDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid maturity date %q", ErrInvalidInput, b.MaturityDate)
	}
	if !maturity.After(issue) {
		return nil, fmt.Errorf("%w: maturity date must follow issue date", ErrInvalidInput)
	}

	days := int(maturity.Sub(issue).Hours() / 24)
	b.MaturityValue = utils.RoundFloat(reports.MaturityValue(b.Amount, b.CouponRate, days), 2)

	res, err := database.DB.ExecContext(ctx,
		`INSERT INTO bonds (issuer, bond_type, amount, coupon_rate, maturity_value, issue_date, maturity_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Issuer, b.BondType, b.Amount, b.CouponRate, b.MaturityValue, b.IssueDate, b.MaturityDate)
	if err != nil {
		return nil, fmt.Errorf("error inserting bond: %w", err)
	}
	b.ID, _ = res.LastInsertId()
	b.CreatedAt = s.now().Format(time.RFC3339)
	return &b, nil
}

func (s *portfolioServiceImpl) IndexFunds(ctx context.Context) ([]models.IndexFund, error) {
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, fund_name, amc, category, units, nav, purchase_price, invested_amount, purchase_date, created_at
		 FROM index_funds ORDER BY fund_name, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying index funds: %w", err)
	}
	defer rows.Close()

	funds := []models.IndexFund{}
	for rows.Next() {
		var f models.IndexFund
		if err := rows.Scan(&f.ID, &f.FundName, &f.AMC, &f.Category, &f.Units, &f.NAV,
			&f.PurchasePrice, &f.InvestedAmount, &f.PurchaseDate, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning index fund: %w", err)
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

func (s *portfolioServiceImpl) AddIndexFund(ctx context.Context, f models.IndexFund) (*models.IndexFund, error) {
	if f.FundName == "" || f.Units <= 0 {
		return nil, fmt.Errorf("%w: fund name and positive units required", ErrInvalidInput)
	}
	if f.InvestedAmount == 0 {
		f.InvestedAmount = utils.RoundFloat(f.Units*f.PurchasePrice, 2)
	}

	res, err := database.DB.ExecContext(ctx,
		`INSERT INTO index_funds (fund_name, amc, category, units, nav, purchase_price, invested_amount, purchase_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FundName, f.AMC, f.Category, f.Units, f.NAV, f.PurchasePrice, f.InvestedAmount, f.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("error inserting index fund: %w", err)
	}
	f.ID, _ = res.LastInsertId()
	f.CreatedAt = s.now().Format(time.RFC3339)
	return &f, nil
}

func (s *portfolioServiceImpl) FXDeposits(ctx context.Context) ([]models.FXDeposit, error) {
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, bank_name, currency, amount, interest_rate, date, created_at
		 FROM fx_deposits ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying fx deposits: %w", err)
	}
	defer rows.Close()

	deposits := []models.FXDeposit{}
	for rows.Next() {
		var d models.FXDeposit
		if err := rows.Scan(&d.ID, &d.BankName, &d.Currency, &d.Amount, &d.InterestRate, &d.Date, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning fx deposit: %w", err)
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

func (s *portfolioServiceImpl) AddFXDeposit(ctx context.Context, d models.FXDeposit) (*models.FXDeposit, error) {
	if d.BankName == "" || d.Currency == "" || d.Amount <= 0 {
		return nil, fmt.Errorf("%w: bank name, currency and positive amount required", ErrInvalidInput)
	}

	res, err := database.DB.ExecContext(ctx,
		`INSERT INTO fx_deposits (bank_name, currency, amount, interest_rate, date) VALUES (?, ?, ?, ?, ?)`,
		d.BankName, d.Currency, d.Amount, d.InterestRate, d.Date)
	if err != nil {
		return nil, fmt.Errorf("error inserting fx deposit: %w", err)
	}
	d.ID, _ = res.LastInsertId()
	d.CreatedAt = s.now().Format(time.RFC3339)
	return &d, nil
}

func (s *portfolioServiceImpl) OtherIncome(ctx context.Context) ([]models.OtherIncome, error) {
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, source, type, amount, frequency, description, date_received, taxable, created_at
		 FROM other_income ORDER BY date_received DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying other income: %w", err)
	}
	defer rows.Close()

	incomes := []models.OtherIncome{}
	for rows.Next() {
		var o models.OtherIncome
		if err := rows.Scan(&o.ID, &o.Source, &o.Type, &o.Amount, &o.Frequency,
			&o.Description, &o.DateReceived, &o.Taxable, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning other income: %w", err)
		}
		incomes = append(incomes, o)
	}
	return incomes, rows.Err()
}

func (s *portfolioServiceImpl) AddOtherIncome(ctx context.Context, o models.OtherIncome) (*models.OtherIncome, error) {
	if o.Source == "" || o.Amount <= 0 {
		return nil, fmt.Errorf("%w: source and positive amount required", ErrInvalidInput)
	}
	if o.Type == "" {
		o.Type = "Other"
	}
	if o.Frequency == "" {
		o.Frequency = "One-time"
	}

	res, err := database.DB.ExecContext(ctx,
		`INSERT INTO other_income (source, type, amount, frequency, description, date_received, taxable)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.Source, o.Type, o.Amount, o.Frequency, o.Description, o.DateReceived, o.Taxable)
	if err != nil {
		return nil, fmt.Errorf("error inserting other income: %w", err)
	}
	o.ID, _ = res.LastInsertId()
	o.CreatedAt = s.now().Format(time.RFC3339)
	return &o, nil
}

func (s *portfolioServiceImpl) invalidateCaches() {
	s.reportCache.Delete(ckEquityHoldings)
	s.reportCache.Delete(ckProfitSummary)
	logger.L.Debug("Invalidated portfolio caches")
}

func validateTrade(symbol string, qtty int, price float64, date string) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if qtty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if _, err := utils.ParseISODate(date); err != nil {
		return fmt.Errorf("%w: invalid trade date %q", ErrInvalidInput, date)
	}
	return nil
}
