package reports

import "github.com/username/finboard/backend/src/models"

// HoldingMetrics are the derived fields of a holding, recomputed from the
// stored shares/prices on every request rather than persisted.
type HoldingMetrics struct {
	MarketValue     float64 `json:"marketValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// GainTier classifies a holding's gain for conditional formatting.
type GainTier string

const (
	TierNegative    GainTier = "negative"
	TierExceptional GainTier = "exceptional"
	TierStrong      GainTier = "strong"
	TierVeryHigh    GainTier = "very-high"
	TierHigh        GainTier = "high"
	TierLow         GainTier = "low"
	TierPositive    GainTier = "positive"
)

// ComputeHoldingMetrics derives market value and gain/loss for one holding.
// A zero average price yields a 0% gain rather than an infinite one.
func ComputeHoldingMetrics(h models.Stock) HoldingMetrics {
	qtty := float64(h.Qtty)
	m := HoldingMetrics{
		MarketValue: qtty * h.LastTradedPrice,
		GainLoss:    (h.LastTradedPrice - h.AvgPrice) * qtty,
	}
	if h.AvgPrice != 0 {
		m.GainLossPercent = (h.LastTradedPrice - h.AvgPrice) / h.AvgPrice * 100
	}
	return m
}

// ComputePositionSize returns a holding's cost-basis share of the whole
// portfolio's cost basis, in percent. Sizing is measured against cost
// basis, not market value. A zero total yields 0.
func ComputePositionSize(h models.Stock, all []models.Stock) float64 {
	var totalCost float64
	for _, s := range all {
		totalCost += float64(s.Qtty) * s.AvgPrice
	}
	if totalCost == 0 {
		return 0
	}
	return float64(h.Qtty) * h.AvgPrice / totalCost * 100
}

// ComputePeriodProfit derives the profit amount for one summary period.
// The amount is never stored; it is always investment * percent / 100.
func ComputePeriodProfit(p models.PeriodSummary) float64 {
	return p.TotalInvestment * p.ProfitPercent / 100
}

// ClassifyGain maps a holding's gain to a display tier. The thresholds form
// an ordered, non-overlapping partition; the first matching guard wins.
func ClassifyGain(gainLoss, gainLossPercent float64) GainTier {
	switch {
	case gainLoss < 0:
		return TierNegative
	case gainLossPercent >= 100:
		return TierExceptional
	case gainLossPercent >= 60:
		return TierStrong
	case gainLossPercent >= 50:
		return TierVeryHigh
	case gainLossPercent >= 30:
		return TierHigh
	case gainLossPercent > 0:
		return TierLow
	default:
		return TierPositive
	}
}

// PortfolioGainLossPercent aggregates holdings into the header's overall
// gain percentage: total gain over total cost basis.
func PortfolioGainLossPercent(all []models.Stock) float64 {
	var totalGain, totalCost float64
	for _, s := range all {
		m := ComputeHoldingMetrics(s)
		totalGain += m.GainLoss
		totalCost += float64(s.Qtty) * s.AvgPrice
	}
	if totalCost == 0 {
		return 0
	}
	return totalGain / totalCost * 100
}
