package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/finboard/backend/src/config"
	"github.com/username/finboard/backend/src/database"
	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/parsers"
	"github.com/username/finboard/backend/src/security/validation"
	"github.com/username/finboard/backend/src/utils"
)

const (
	ckExpenseSummary = "agg_expense_summary"
	ckImportedMonths = "agg_imported_months"
)

type expenseServiceImpl struct {
	parser      *parsers.ExpenseCSVParser
	reportCache *cache.Cache
	pageSize    int
}

func NewExpenseService(parser *parsers.ExpenseCSVParser, reportCache *cache.Cache) ExpenseService {
	return &expenseServiceImpl{
		parser:      parser,
		reportCache: reportCache,
		pageSize:    config.Cfg.ExpensePageSize,
	}
}

// ImportExpenses parses the uploaded CSV and replaces the named month's
// rows in one transaction. A re-upload of an already imported month is a
// full overwrite, never an append.
func (s *expenseServiceImpl) ImportExpenses(fileReader io.Reader, year, month int) (*ImportPreview, error) {
	startTime := time.Now()
	logger.L.Info("ImportExpenses START", "year", year, "month", month)

	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}

	records, err := s.parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file contains no expense rows", ErrParsingFailed)
	}

	if err := s.storeMonth(year, month, records); err != nil {
		return nil, err
	}

	logger.L.Info("ImportExpenses END", "year", year, "month", month, "rows", len(records), "duration", time.Since(startTime))
	return &ImportPreview{
		Year:     year,
		Month:    month,
		Imported: len(records),
		Preview:  parsers.Preview(records),
	}, nil
}

// ImportRecords is the JSON bulk-import path: pre-parsed rows instead of a
// CSV file, same replace-the-month semantics.
func (s *expenseServiceImpl) ImportRecords(ctx context.Context, year, month int, records []models.ExpenseRecord) (*ImportPreview, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no expense rows provided", ErrInvalidInput)
	}
	for i, r := range records {
		if _, err := utils.ParseISODate(r.Date); err != nil {
			return nil, fmt.Errorf("%w: record %d has invalid date %q", ErrInvalidInput, i+1, r.Date)
		}
	}

	if err := s.storeMonth(year, month, records); err != nil {
		return nil, err
	}

	logger.L.Info("Imported expense records", "year", year, "month", month, "rows", len(records))
	return &ImportPreview{
		Year:     year,
		Month:    month,
		Imported: len(records),
		Preview:  parsers.Preview(records),
	}, nil
}

// storeMonth replaces the month's rows in one transaction and registers any
// new category pairs.
func (s *expenseServiceImpl) storeMonth(year, month int, records []models.ExpenseRecord) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM expenses WHERE year = ? AND month = ?`, year, month); err != nil {
		return fmt.Errorf("error clearing month before import: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO expenses (year, month, date, category, subcategory, description, amount) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	catStmt, err := dbTx.Prepare(`INSERT OR IGNORE INTO expense_categories (name, subcategory) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing category statement: %w", err)
	}
	defer catStmt.Close()

	for i := range records {
		r := &records[i]
		r.Category = validation.SanitizeForFormulaInjection(validation.StripUnprintable(r.Category))
		r.Subcategory = validation.SanitizeForFormulaInjection(validation.StripUnprintable(r.Subcategory))
		r.Description = validation.SanitizeForFormulaInjection(validation.StripUnprintable(r.Description))

		if _, err := stmt.Exec(year, month, r.Date, r.Category, r.Subcategory, r.Description, r.Amount); err != nil {
			return fmt.Errorf("error inserting expense row %d: %w", i+1, err)
		}
		if _, err := catStmt.Exec(r.Category, r.Subcategory); err != nil {
			return fmt.Errorf("error registering category %q: %w", r.Category, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing import: %w", err)
	}

	s.invalidateCaches()
	return nil
}

// ListExpenses returns one page of the month's rows, oldest first. It reads
// one row past the page size so HasNextPage is exact rather than guessed.
func (s *expenseServiceImpl) ListExpenses(ctx context.Context, year, month, page int) (*ExpensePage, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}

	offset := (page - 1) * s.pageSize
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, date, category, subcategory, description, amount
		 FROM expenses WHERE year = ? AND month = ?
		 ORDER BY date, id LIMIT ? OFFSET ?`,
		year, month, s.pageSize+1, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]models.ExpenseRecord, 0, s.pageSize)
	for rows.Next() {
		var r models.ExpenseRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.Category, &r.Subcategory, &r.Description, &r.Amount); err != nil {
			return nil, fmt.Errorf("error scanning expense row: %w", err)
		}
		expenses = append(expenses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	hasNext := len(expenses) > s.pageSize
	if hasNext {
		expenses = expenses[:s.pageSize]
	}
	return &ExpensePage{
		Expenses:    expenses,
		Page:        page,
		PageSize:    s.pageSize,
		HasNextPage: hasNext,
	}, nil
}

// MonthRecords returns every row of a month, unpaginated. The drill-down
// subcategory view filters these client-side.
func (s *expenseServiceImpl) MonthRecords(ctx context.Context, year, month int) ([]models.ExpenseRecord, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}

	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, date, category, subcategory, description, amount
		 FROM expenses WHERE year = ? AND month = ? ORDER BY date, id`,
		year, month)
	if err != nil {
		return nil, fmt.Errorf("error querying month records: %w", err)
	}
	defer rows.Close()

	var records []models.ExpenseRecord
	for rows.Next() {
		var r models.ExpenseRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.Category, &r.Subcategory, &r.Description, &r.Amount); err != nil {
			return nil, fmt.Errorf("error scanning month record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summary aggregates the whole ledger into the month -> category ->
// subcategory tree, months in ascending import order. The result is cached
// until the next mutation.
func (s *expenseServiceImpl) Summary(ctx context.Context) (*models.ExpenseSummary, error) {
	if cached, found := s.reportCache.Get(ckExpenseSummary); found {
		logger.L.Debug("Cache hit for expense summary")
		return cached.(*models.ExpenseSummary), nil
	}
	logger.L.Info("Cache miss for expense summary, aggregating from DB")

	rows, err := database.DB.QueryContext(ctx,
		`SELECT year, month, category, subcategory, SUM(amount)
		 FROM expenses
		 GROUP BY year, month, category, subcategory
		 ORDER BY year, month, category, subcategory`)
	if err != nil {
		return nil, fmt.Errorf("error aggregating expenses: %w", err)
	}
	defer rows.Close()

	summary := models.NewExpenseSummary()
	for rows.Next() {
		var year, month int
		var category, subcategory string
		var total float64
		if err := rows.Scan(&year, &month, &category, &subcategory, &total); err != nil {
			return nil, fmt.Errorf("error scanning aggregate row: %w", err)
		}

		key := utils.MonthKey(year, month)
		ms, ok := summary.Get(key)
		if !ok {
			ms = models.MonthSummary{Categories: make(map[string]models.CategorySummary)}
		}
		cs, ok := ms.Categories[category]
		if !ok {
			cs = models.CategorySummary{Subcategories: make(map[string]float64)}
		}
		cs.Subcategories[subcategory] += total
		cs.Total += total
		ms.Categories[category] = cs
		ms.Total += total
		summary.Set(key, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregate rows: %w", err)
	}

	s.reportCache.Set(ckExpenseSummary, summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *expenseServiceImpl) ImportedMonths(ctx context.Context) ([]models.ImportedMonth, error) {
	if cached, found := s.reportCache.Get(ckImportedMonths); found {
		return cached.([]models.ImportedMonth), nil
	}

	rows, err := database.DB.QueryContext(ctx,
		`SELECT year, month, COUNT(*) FROM expenses GROUP BY year, month ORDER BY year, month`)
	if err != nil {
		return nil, fmt.Errorf("error querying imported months: %w", err)
	}
	defer rows.Close()

	months := []models.ImportedMonth{}
	for rows.Next() {
		var m models.ImportedMonth
		if err := rows.Scan(&m.Year, &m.Month, &m.Count); err != nil {
			return nil, fmt.Errorf("error scanning imported month: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imported months: %w", err)
	}

	s.reportCache.Set(ckImportedMonths, months, cache.DefaultExpiration)
	return months, nil
}

func (s *expenseServiceImpl) DeleteMonth(ctx context.Context, year, month int) error {
	if err := validateYearMonth(year, month); err != nil {
		return err
	}

	res, err := database.DB.ExecContext(ctx, `DELETE FROM expenses WHERE year = ? AND month = ?`, year, month)
	if err != nil {
		return fmt.Errorf("error deleting month: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrMonthNotImported
	}

	s.invalidateCaches()
	logger.L.Info("Deleted imported month", "year", year, "month", month, "rows", affected)
	return nil
}

func (s *expenseServiceImpl) Categories(ctx context.Context) ([]models.ExpenseCategory, error) {
	rows, err := database.DB.QueryContext(ctx,
		`SELECT id, name, subcategory FROM expense_categories ORDER BY name, subcategory`)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	categories := []models.ExpenseCategory{}
	for rows.Next() {
		var c models.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Subcategory); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *expenseServiceImpl) AddCategory(ctx context.Context, name, subcategory string) (*models.ExpenseCategory, error) {
	name = validation.StripUnprintable(name)
	subcategory = validation.StripUnprintable(subcategory)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	res, err := database.DB.ExecContext(ctx,
		`INSERT INTO expense_categories (name, subcategory) VALUES (?, ?)`, name, subcategory)
	if err != nil {
		return nil, fmt.Errorf("error inserting category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error resolving category id: %w", err)
	}
	return &models.ExpenseCategory{ID: id, Name: name, Subcategory: subcategory}, nil
}

func (s *expenseServiceImpl) UpdateCategory(ctx context.Context, id int64, name, subcategory string) error {
	name = validation.StripUnprintable(name)
	subcategory = validation.StripUnprintable(subcategory)
	if name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	res, err := database.DB.ExecContext(ctx,
		`UPDATE expense_categories SET name = ?, subcategory = ? WHERE id = ?`, name, subcategory, id)
	if err != nil {
		return fmt.Errorf("error updating category: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: category %d not found", ErrInvalidInput, id)
	}
	return nil
}

func (s *expenseServiceImpl) DeleteCategory(ctx context.Context, id int64) error {
	res, err := database.DB.ExecContext(ctx, `DELETE FROM expense_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: category %d not found", ErrInvalidInput, id)
	}
	return nil
}

func (s *expenseServiceImpl) invalidateCaches() {
	s.reportCache.Delete(ckExpenseSummary)
	s.reportCache.Delete(ckImportedMonths)
	logger.L.Debug("Invalidated expense report caches")
}

func validateYearMonth(year, month int) error {
	if year < 1970 || year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidInput, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidInput, month)
	}
	return nil
}
