package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/username/finboard/backend/src/models"
)

func newTestPortfolio(t *testing.T, now time.Time) *portfolioServiceImpl {
	t.Helper()
	return &portfolioServiceImpl{
		reportCache: setupTest(t),
		now:         func() time.Time { return now },
	}
}

func TestWeightedAverageCost(t *testing.T) {
	svc := newTestPortfolio(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := svc.Buy(ctx, "LOLC", 10, 100, "2025-01-10"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := svc.Buy(ctx, "LOLC", 10, 200, "2025-02-10"); err != nil {
		t.Fatalf("buy: %v", err)
	}

	holdings, err := svc.Holdings(ctx)
	if err != nil {
		t.Fatalf("holdings: %v", err)
	}
	if len(holdings) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(holdings))
	}
	if holdings[0].Qtty != 20 || holdings[0].AvgPrice != 150 {
		t.Errorf("expected 20 @ 150, got %d @ %.2f", holdings[0].Qtty, holdings[0].AvgPrice)
	}

	t.Run("sell realizes against average", func(t *testing.T) {
		profitLoss, err := svc.Sell(ctx, "LOLC", 5, 200, "2025-03-01")
		if err != nil {
			t.Fatalf("sell: %v", err)
		}
		if profitLoss != 250 {
			t.Errorf("profit = %.2f, want 250", profitLoss)
		}

		holdings, err := svc.Holdings(ctx)
		if err != nil {
			t.Fatalf("holdings: %v", err)
		}
		// Sells reduce quantity but never move the average.
		if holdings[0].Qtty != 15 || holdings[0].AvgPrice != 150 {
			t.Errorf("expected 15 @ 150, got %d @ %.2f", holdings[0].Qtty, holdings[0].AvgPrice)
		}
	})

	t.Run("position closes at zero", func(t *testing.T) {
		if _, err := svc.Sell(ctx, "LOLC", 15, 180, "2025-04-01"); err != nil {
			t.Fatalf("sell: %v", err)
		}
		holdings, err := svc.Holdings(ctx)
		if err != nil {
			t.Fatalf("holdings: %v", err)
		}
		if len(holdings) != 0 {
			t.Errorf("expected no open positions, got %+v", holdings)
		}
	})
}

func TestSellValidation(t *testing.T) {
	svc := newTestPortfolio(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := svc.Sell(ctx, "GHOST", 1, 10, "2025-01-01"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}

	if err := svc.Buy(ctx, "COMB", 10, 80, "2025-01-10"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := svc.Sell(ctx, "COMB", 20, 90, "2025-02-01"); !errors.Is(err, ErrInsufficientQty) {
		t.Errorf("expected ErrInsufficientQty, got %v", err)
	}

	t.Run("invalid trade inputs", func(t *testing.T) {
		if err := svc.Buy(ctx, "", 10, 80, "2025-01-10"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("empty symbol: %v", err)
		}
		if err := svc.Buy(ctx, "COMB", 0, 80, "2025-01-10"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("zero qtty: %v", err)
		}
		if err := svc.Buy(ctx, "COMB", 10, 80, "10/01/2025"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("bad date: %v", err)
		}
	})
}

func TestHoldingsJoinNotesAndPrices(t *testing.T) {
	svc := newTestPortfolio(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := svc.Buy(ctx, "HNB", 50, 150, "2025-01-10"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := svc.SetLastTradedPrice(ctx, "HNB", 180); err != nil {
		t.Fatalf("price: %v", err)
	}
	if err := svc.UpsertNote(ctx, "HNB", "long term", "banking exposure"); err != nil {
		t.Fatalf("note: %v", err)
	}

	holdings, err := svc.Holdings(ctx)
	if err != nil {
		t.Fatalf("holdings: %v", err)
	}
	h := holdings[0]
	if h.LastTradedPrice != 180 || h.Comment != "long term" || h.Notes != "banking exposure" {
		t.Errorf("join lost data: %+v", h)
	}
}

func TestProfitSummaryWindows(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestPortfolio(t, now)
	ctx := context.Background()

	// Opening position bought long before every window.
	if err := svc.Buy(ctx, "LOLC", 10, 100, "2023-01-01"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	// Realized inside all windows: (150-100)*5 = 250.
	if _, err := svc.Sell(ctx, "LOLC", 5, 150, "2025-05-01"); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if err := svc.RecordDividend(ctx, models.Dividend{Symbol: "LOLC", Amount: 50, Date: "2025-05-02"}); err != nil {
		t.Fatalf("dividend: %v", err)
	}

	summary, err := svc.ProfitSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	// Opening basis 1000, no buys in any window, profit 250+50 = 300.
	for name, ps := range map[string]models.PeriodSummary{
		"6 months":  summary.Summary6Months,
		"12 months": summary.Summary12Months,
		"24 months": summary.Summary24Months,
	} {
		if math.Abs(ps.TotalInvestment-1000) > 1e-9 {
			t.Errorf("%s: investment = %.2f, want 1000", name, ps.TotalInvestment)
		}
		if math.Abs(ps.ProfitPercent-30) > 1e-9 {
			t.Errorf("%s: percent = %.2f, want 30", name, ps.ProfitPercent)
		}
	}
}

func TestProfitSummaryEmptyLedger(t *testing.T) {
	svc := newTestPortfolio(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	summary, err := svc.ProfitSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Summary6Months.ProfitPercent != 0 || summary.Summary6Months.TotalInvestment != 0 {
		t.Errorf("empty ledger must yield zeros, got %+v", summary.Summary6Months)
	}
}

func TestOwnedDividendsFilter(t *testing.T) {
	svc := newTestPortfolio(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if err := svc.Buy(ctx, "HELD", 10, 50, "2025-01-01"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := svc.RecordDividend(ctx, models.Dividend{Symbol: "HELD", Amount: 100, Date: "2025-02-01"}); err != nil {
		t.Fatalf("dividend: %v", err)
	}
	if err := svc.RecordDividend(ctx, models.Dividend{Symbol: "SOLD", Amount: 100, Date: "2025-02-01"}); err != nil {
		t.Fatalf("dividend: %v", err)
	}

	dividends, err := svc.OwnedDividends(ctx)
	if err != nil {
		t.Fatalf("owned dividends: %v", err)
	}
	if len(dividends) != 1 || dividends[0].Symbol != "HELD" {
		t.Errorf("expected only held symbols, got %+v", dividends)
	}
}

func TestAddFixedDepositComputesMaturity(t *testing.T) {
	svc := newTestPortfolio(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	fd, err := svc.AddFixedDeposit(ctx, models.FixedDeposit{
		BankName:        "NSB",
		PrincipalAmount: 100000,
		InterestRate:    10,
		StartDate:       "2025-01-01",
		MaturityDate:    "2026-01-01",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if math.Abs(fd.MaturityValue-110000) > 1 {
		t.Errorf("maturity value = %.2f, want ~110000", fd.MaturityValue)
	}
	if fd.MaturityPeriodMonths != 12 {
		t.Errorf("period = %d months, want 12", fd.MaturityPeriodMonths)
	}

	t.Run("maturity before start rejected", func(t *testing.T) {
		_, err := svc.AddFixedDeposit(ctx, models.FixedDeposit{
			BankName: "NSB", PrincipalAmount: 1000, InterestRate: 5,
			StartDate: "2025-01-01", MaturityDate: "2024-01-01",
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	fds, err := svc.FixedDeposits(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fds) != 1 || fds[0].BankName != "NSB" {
		t.Errorf("unexpected deposits: %+v", fds)
	}
}
