package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/finboard/backend/src/models"
)

var (
	ErrParsingFailed    = errors.New("file parsing failed")
	ErrMonthNotImported = errors.New("month has no imported expenses")
	ErrInsufficientQty  = errors.New("sell quantity exceeds held quantity")
	ErrUnknownSymbol    = errors.New("symbol not held")
	ErrInvalidInput     = errors.New("invalid input")
)

// ExpensePage is one page of raw expense rows plus the paging hint the
// dashboard table needs.
type ExpensePage struct {
	Expenses    []models.ExpenseRecord `json:"expenses"`
	Page        int                    `json:"page"`
	PageSize    int                    `json:"pageSize"`
	HasNextPage bool                   `json:"hasNextPage"`
}

// ImportPreview is what the upload endpoint returns: the rows written plus
// the first few for client-side confirmation.
type ImportPreview struct {
	Year     int                    `json:"year"`
	Month    int                    `json:"month"`
	Imported int                    `json:"imported"`
	Preview  []models.ExpenseRecord `json:"preview"`
}

// ExpenseService covers the monthly expense ledger: import, paging,
// aggregation and category maintenance.
type ExpenseService interface {
	ImportExpenses(fileReader io.Reader, year, month int) (*ImportPreview, error)
	ImportRecords(ctx context.Context, year, month int, records []models.ExpenseRecord) (*ImportPreview, error)
	ListExpenses(ctx context.Context, year, month, page int) (*ExpensePage, error)
	MonthRecords(ctx context.Context, year, month int) ([]models.ExpenseRecord, error)
	Summary(ctx context.Context) (*models.ExpenseSummary, error)
	ImportedMonths(ctx context.Context) ([]models.ImportedMonth, error)
	DeleteMonth(ctx context.Context, year, month int) error
	Categories(ctx context.Context) ([]models.ExpenseCategory, error)
	AddCategory(ctx context.Context, name, subcategory string) (*models.ExpenseCategory, error)
	UpdateCategory(ctx context.Context, id int64, name, subcategory string) error
	DeleteCategory(ctx context.Context, id int64) error
}

// PortfolioService covers every investment class the dashboard shows.
type PortfolioService interface {
	Holdings(ctx context.Context) ([]models.Stock, error)
	Buy(ctx context.Context, symbol string, qtty int, price float64, date string) error
	Sell(ctx context.Context, symbol string, qtty int, price float64, date string) (profitLoss float64, err error)
	Transactions(ctx context.Context) ([]models.EquityTransaction, error)
	SymbolTransactions(ctx context.Context, symbol string) ([]models.EquityTransaction, error)
	UpsertNote(ctx context.Context, symbol, comment, notes string) error
	SetLastTradedPrice(ctx context.Context, symbol string, price float64) error
	ProfitSummary(ctx context.Context) (*models.EquityProfitSummary, error)
	RecordDividend(ctx context.Context, d models.Dividend) error
	OwnedDividends(ctx context.Context) ([]models.Dividend, error)
	FixedDeposits(ctx context.Context) ([]models.FixedDeposit, error)
	AddFixedDeposit(ctx context.Context, fd models.FixedDeposit) (*models.FixedDeposit, error)
	Bonds(ctx context.Context) ([]models.Bond, error)
	AddBond(ctx context.Context, b models.Bond) (*models.Bond, error)
	IndexFunds(ctx context.Context) ([]models.IndexFund, error)
	AddIndexFund(ctx context.Context, f models.IndexFund) (*models.IndexFund, error)
	FXDeposits(ctx context.Context) ([]models.FXDeposit, error)
	AddFXDeposit(ctx context.Context, d models.FXDeposit) (*models.FXDeposit, error)
	OtherIncome(ctx context.Context) ([]models.OtherIncome, error)
	AddOtherIncome(ctx context.Context, o models.OtherIncome) (*models.OtherIncome, error)
}

// AnnouncementService proxies corporate announcement lookups to the
// exchange so the browser never talks to it directly.
type AnnouncementService interface {
	CompanyAnnouncements(ctx context.Context, fromDate, toDate string) ([]byte, error)
	AnnouncementDetails(ctx context.Context, announcementID string) ([]byte, error)
}
