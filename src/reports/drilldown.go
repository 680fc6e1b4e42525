package reports

import (
	"context"
	"fmt"

	"github.com/username/finboard/backend/src/models"
)

// RecordSource supplies the raw expense rows backing a month. The drill-down
// asks for the whole month and filters locally; pagination is the caller's
// concern when listing, not when drilling.
type RecordSource interface {
	MonthRecords(ctx context.Context, year, month int) ([]models.ExpenseRecord, error)
}

// DrillDown is the month -> category -> subcategory narrowing state over an
// expense summary. It has three levels: collapsed, month-selected and
// category-selected. Re-selecting the active month or category collapses
// that level again; toggling never performs I/O.
type DrillDown struct {
	summary *models.ExpenseSummary
	source  RecordSource

	month    string
	category string
}

// NewDrillDown returns a collapsed drill-down over summary. source may be
// nil if SelectSubcategory will not be used.
func NewDrillDown(summary *models.ExpenseSummary, source RecordSource) *DrillDown {
	return &DrillDown{summary: summary, source: source}
}

// Month returns the selected month key, or "" when collapsed.
func (d *DrillDown) Month() string { return d.month }

// Category returns the selected category, or "" when no category level is open.
func (d *DrillDown) Category() string { return d.category }

// Collapsed reports whether no month is selected.
func (d *DrillDown) Collapsed() bool { return d.month == "" }

// SelectMonth opens the category breakdown for month, or collapses it when
// the same month is selected again. Changing months always closes the
// category level. It returns the (possibly empty) category series for the
// new selection.
func (d *DrillDown) SelectMonth(month string) []CategoryTotal {
	if d.month == month {
		d.month = ""
		d.category = ""
		return nil
	}
	d.month = month
	d.category = ""
	return TopCategories(d.summary, month, DefaultTopCategoryLimit)
}

// SelectCategory opens the subcategory table for category within the
// selected month, or closes it when the same category is selected again.
// Selecting a category with no month open is a no-op.
func (d *DrillDown) SelectCategory(category string) []SubcategoryShare {
	if d.month == "" {
		return nil
	}
	if d.category == category {
		d.category = ""
		return nil
	}
	d.category = category
	return SubcategoryPercentages(d.summary, d.month, category)
}

// SelectSubcategory fetches the selected month's raw records and filters
// them to the open category and the given subcategory. The fetch failing
// leaves the drill-down selection untouched; the caller renders the error
// inline and may retry.
func (d *DrillDown) SelectSubcategory(ctx context.Context, subcategory string) ([]models.ExpenseRecord, error) {
	if d.month == "" || d.category == "" {
		return nil, fmt.Errorf("no category selected")
	}
	if d.source == nil {
		return nil, fmt.Errorf("no record source configured")
	}

	var year, monthNum int
	if _, err := fmt.Sscanf(d.month, "%d-%d", &year, &monthNum); err != nil {
		return nil, fmt.Errorf("invalid month key %q: %w", d.month, err)
	}

	records, err := d.source.MonthRecords(ctx, year, monthNum)
	if err != nil {
		return nil, fmt.Errorf("fetch records for %s: %w", d.month, err)
	}

	matched := make([]models.ExpenseRecord, 0)
	for _, r := range records {
		if r.Category == d.category && r.Subcategory == subcategory {
			matched = append(matched, r)
		}
	}
	return matched, nil
}
