package reports

import (
	"fmt"
	"time"
)

// MaturityBucket is a coarse time-to-maturity label for fixed-income rows:
// "Matured", "<N> months" under a year, "<N> year(s)" beyond.
type MaturityBucket struct {
	Status string `json:"status"`
	Days   int    `json:"days"`
}

// MaturityValue computes principal plus simple interest accrued over the
// term: principal * (1 + rate/100 * days/365).
func MaturityValue(principal, ratePercent float64, days int) float64 {
	return principal * (1 + ratePercent/100*float64(days)/365)
}

// TimeToMaturity buckets the distance from now to maturityDate. Thresholds
// sit at 0 and 365 days; months are counted as 30-day blocks, years as
// 365-day blocks.
func TimeToMaturity(maturityDate, now time.Time) MaturityBucket {
	days := int(maturityDate.Sub(now).Hours() / 24)
	switch {
	case days <= 0:
		return MaturityBucket{Status: "Matured", Days: 0}
	case days < 365:
		return MaturityBucket{Status: fmt.Sprintf("%d months", days/30), Days: days}
	default:
		years := days / 365
		plural := ""
		if years > 1 {
			plural = "s"
		}
		return MaturityBucket{Status: fmt.Sprintf("%d year%s", years, plural), Days: days}
	}
}

// AnnualizedYield spreads a bond's total return over its life in years.
// A non-positive life yields 0.
func AnnualizedYield(amount, maturityValue float64, issueDate, maturityDate time.Time) float64 {
	years := maturityDate.Sub(issueDate).Hours() / 24 / 365
	if years <= 0 || amount == 0 {
		return 0
	}
	totalReturn := (maturityValue - amount) / amount * 100
	return totalReturn / years
}
