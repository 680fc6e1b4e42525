package client

import (
	"context"

	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/models"
	"golang.org/x/sync/errgroup"
)

// DashboardData is everything the overview screen renders in one shot.
type DashboardData struct {
	Stocks        []models.Stock              `json:"stocks"`
	ProfitSummary *models.EquityProfitSummary `json:"profitSummary"`
	FixedDeposits []models.FixedDeposit       `json:"fixedDeposits"`
	FXDeposits    []models.FXDeposit          `json:"fxDeposits"`
}

// DashboardOverview fetches the overview's four data sets in parallel.
// Equity holdings and the profit summary are required; the deposit legs
// degrade to empty lists on failure so one slow endpoint can't blank the
// whole dashboard.
func (c *Client) DashboardOverview(ctx context.Context) (*DashboardData, error) {
	data := &DashboardData{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stocks, err := c.Holdings(ctx)
		if err != nil {
			return err
		}
		data.Stocks = stocks
		return nil
	})
	g.Go(func() error {
		summary, err := c.ProfitSummary(ctx)
		if err != nil {
			return err
		}
		data.ProfitSummary = summary
		return nil
	})
	g.Go(func() error {
		fds, err := c.FixedDeposits(ctx)
		if err != nil {
			logger.L.Warn("Dashboard: fixed deposits unavailable", "error", err)
			fds = []models.FixedDeposit{}
		}
		data.FixedDeposits = fds
		return nil
	})
	g.Go(func() error {
		deposits, err := c.FXDeposits(ctx)
		if err != nil {
			logger.L.Warn("Dashboard: fx deposits unavailable", "error", err)
			deposits = []models.FXDeposit{}
		}
		data.FXDeposits = deposits
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
