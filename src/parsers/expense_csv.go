package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/utils"
)

// PreviewRowCount is how many parsed rows the import preview shows.
const PreviewRowCount = 5

// RequiredHeaders are the columns an expense CSV must carry, in any order,
// case-insensitively.
var RequiredHeaders = []string{"Date", "Amount", "Category", "Subcategory", "Description"}

var acceptedDateLayouts = []string{"2006-01-02", "02/01/2006"}

// HeaderError reports the required headers missing from an uploaded file.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("missing required header(s): %s", strings.Join(e.Missing, ", "))
}

// ExpenseCSVParser parses the monthly expense report CSV into expense
// records ready for bulk import.
type ExpenseCSVParser struct{}

func NewExpenseCSVParser() *ExpenseCSVParser { return &ExpenseCSVParser{} }

// Parse reads the whole CSV. The header row is validated first; a missing
// required column aborts the parse with a HeaderError naming exactly the
// missing columns. Data rows with an unparseable date or amount are
// rejected with their line number.
func (p *ExpenseCSVParser) Parse(file io.Reader) ([]models.ExpenseRecord, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := validateHeader(header)
	if err != nil {
		return nil, err
	}

	var records []models.ExpenseRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}

		rec, err := parseRow(row, colIndex, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	logger.L.Debug("Parsed expense CSV", "rows", len(records))
	return records, nil
}

// Preview returns the first min(PreviewRowCount, len(records)) rows, used
// by the client to confirm the file before the bulk POST.
func Preview(records []models.ExpenseRecord) []models.ExpenseRecord {
	n := utils.MinInt(PreviewRowCount, len(records))
	out := make([]models.ExpenseRecord, n)
	copy(out, records[:n])
	return out
}

// validateHeader maps required column names to their positions and reports
// every missing one at once.
func validateHeader(header []string) (map[string]int, error) {
	colIndex := make(map[string]int, len(RequiredHeaders))
	for i, name := range header {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, required := range RequiredHeaders {
		if _, ok := colIndex[strings.ToLower(required)]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &HeaderError{Missing: missing}
	}
	return colIndex, nil
}

func parseRow(row []string, colIndex map[string]int, line int) (models.ExpenseRecord, error) {
	field := func(name string) string {
		idx := colIndex[strings.ToLower(name)]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	dateStr := field("Date")
	date, err := parseRowDate(dateStr)
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("row %d: invalid date %q", line, dateStr)
	}

	amountStr := field("Amount")
	amount, err := decimal.NewFromString(strings.ReplaceAll(amountStr, ",", ""))
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("row %d: invalid amount %q", line, amountStr)
	}

	amt, _ := amount.Round(2).Float64()
	return models.ExpenseRecord{
		Date:        date.Format("2006-01-02"),
		Category:    field("Category"),
		Subcategory: field("Subcategory"),
		Description: field("Description"),
		Amount:      amt,
	}, nil
}

func parseRowDate(dateStr string) (time.Time, error) {
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
