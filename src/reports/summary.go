package reports

import (
	"sort"

	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/utils"
)

// DefaultTopCategoryLimit caps the category breakdown at the ten largest
// categories, matching the dashboard's pie chart.
const DefaultTopCategoryLimit = 10

// MonthTotal is one (month, total) point of the monthly totals bar series.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// CategoryTotal is one slice of a month's category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// SubcategoryShare is one row of a category's subcategory table: the raw
// value and its share of the category total, rounded to one decimal.
type SubcategoryShare struct {
	Subcategory string  `json:"subcategory"`
	Value       float64 `json:"value"`
	Percent     float64 `json:"percent"`
}

// Months returns the summary's month keys most-recent first (the summary's
// insertion order reversed).
func Months(summary *models.ExpenseSummary) []string {
	keys := summary.Months()
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// MonthBar builds the (month, total) series for the monthly totals chart,
// ordered most-recent first. Months missing a rollup chart as zero.
func MonthBar(summary *models.ExpenseSummary) []MonthTotal {
	months := Months(summary)
	series := make([]MonthTotal, 0, len(months))
	for _, m := range months {
		ms, _ := summary.Get(m)
		series = append(series, MonthTotal{Month: m, Total: ms.Total})
	}
	return series
}

// TopCategories returns a month's categories sorted descending by total,
// truncated to limit (ties broken by name so the order is deterministic).
// A limit <= 0 falls back to DefaultTopCategoryLimit. An unknown month
// yields an empty series.
func TopCategories(summary *models.ExpenseSummary, month string, limit int) []CategoryTotal {
	if limit <= 0 {
		limit = DefaultTopCategoryLimit
	}
	ms, ok := summary.Get(month)
	if !ok {
		return nil
	}

	cats := make([]CategoryTotal, 0, len(ms.Categories))
	for name, cs := range ms.Categories {
		cats = append(cats, CategoryTotal{Category: name, Total: cs.Total})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Total != cats[j].Total {
			return cats[i].Total > cats[j].Total
		}
		return cats[i].Category < cats[j].Category
	})

	if len(cats) > limit {
		cats = cats[:limit]
	}
	return cats
}

// SubcategoryPercentages breaks a category down into its subcategories with
// each value's share of the category total, one decimal place. A zero
// category total yields 0% shares rather than NaN. Rows are sorted
// descending by value, names breaking ties.
func SubcategoryPercentages(summary *models.ExpenseSummary, month, category string) []SubcategoryShare {
	ms, ok := summary.Get(month)
	if !ok {
		return nil
	}
	cs, ok := ms.Categories[category]
	if !ok {
		return nil
	}

	rows := make([]SubcategoryShare, 0, len(cs.Subcategories))
	for name, value := range cs.Subcategories {
		percent := 0.0
		if cs.Total != 0 {
			percent = utils.RoundFloat(value/cs.Total*100, 1)
		}
		rows = append(rows, SubcategoryShare{Subcategory: name, Value: value, Percent: percent})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Subcategory < rows[j].Subcategory
	})
	return rows
}
