// Package client is the typed Go client for the finboard REST API. Every
// response is decoded into an explicit struct at the boundary; a body that
// doesn't match the expected shape is an error, never a silent zero value.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/services"
)

const defaultTimeout = 20 * time.Second

// APIError is a non-2xx response, carrying the server's error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client rooted at baseURL (e.g. "http://localhost:3000").
// Pass nil to use a default HTTP client.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: httpClient,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// Holdings fetches the current equity positions.
func (c *Client) Holdings(ctx context.Context) ([]models.Stock, error) {
	var resp struct {
		Stocks []models.Stock `json:"stocks"`
	}
	if err := c.getJSON(ctx, "/portfolio/equity", &resp); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

// ProfitSummary fetches the 6/12/24 month equity performance windows.
func (c *Client) ProfitSummary(ctx context.Context) (*models.EquityProfitSummary, error) {
	var resp struct {
		Equity *models.EquityProfitSummary `json:"equity"`
	}
	if err := c.getJSON(ctx, "/portfolio/summary", &resp); err != nil {
		return nil, err
	}
	if resp.Equity == nil {
		return nil, fmt.Errorf("profit summary response missing equity payload")
	}
	return resp.Equity, nil
}

// Expenses fetches one page of a month's expense rows.
func (c *Client) Expenses(ctx context.Context, year, month, page int) (*services.ExpensePage, error) {
	var resp services.ExpensePage
	path := fmt.Sprintf("/expense?year=%d&month=%d&page=%d", year, month, page)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExpenseSummary fetches the full month/category/subcategory aggregation.
// Month order survives decoding (insertion-ordered map).
func (c *Client) ExpenseSummary(ctx context.Context) (*models.ExpenseSummary, error) {
	summary := models.NewExpenseSummary()
	if err := c.getJSON(ctx, "/expense/summary", summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *Client) ImportedMonths(ctx context.Context) ([]models.ImportedMonth, error) {
	var months []models.ImportedMonth
	if err := c.getJSON(ctx, "/expense/admin/summary", &months); err != nil {
		return nil, err
	}
	return months, nil
}

// DeleteImportedMonth removes every expense row of one imported month.
func (c *Client) DeleteImportedMonth(ctx context.Context, year, month int) error {
	path := fmt.Sprintf("/expense/admin?year=%d&month=%d", year, month)
	return c.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]models.ExpenseCategory, error) {
	var categories []models.ExpenseCategory
	if err := c.getJSON(ctx, "/expense/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) AddCategory(ctx context.Context, name, subcategory string) (*models.ExpenseCategory, error) {
	body := map[string]string{"name": name, "subcategory": subcategory}
	var created models.ExpenseCategory
	if err := c.postJSON(ctx, "/expense/categories", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, name, subcategory string) error {
	body := map[string]string{"name": name, "subcategory": subcategory}
	return c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/expense/categories/%d", id), body, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/expense/categories/%d", id), nil, nil)
}

// ImportExpenses bulk-imports pre-parsed rows for one month.
func (c *Client) ImportExpenses(ctx context.Context, year, month int, records []models.ExpenseRecord) (*services.ImportPreview, error) {
	body := map[string]any{"year": year, "month": month, "records": records}
	var resp services.ImportPreview
	if err := c.postJSON(ctx, "/expense", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Buy(ctx context.Context, symbol string, qtty int, price float64, date string) error {
	body := map[string]any{"qtty": qtty, "price": price, "date": date}
	return c.postJSON(ctx, "/portfolio/equity/"+symbol+"/buy", body, nil)
}

// Sell returns the realized profit/loss reported by the server.
func (c *Client) Sell(ctx context.Context, symbol string, qtty int, price float64, date string) (float64, error) {
	body := map[string]any{"qtty": qtty, "price": price, "date": date}
	var resp struct {
		ProfitLoss float64 `json:"profit_loss"`
	}
	if err := c.postJSON(ctx, "/portfolio/equity/"+symbol+"/sell", body, &resp); err != nil {
		return 0, err
	}
	return resp.ProfitLoss, nil
}

// UpsertNote attaches a comment and free-form notes to a held symbol.
func (c *Client) UpsertNote(ctx context.Context, symbol, comment, notes string) error {
	body := map[string]string{"comment": comment, "notes": notes}
	return c.postJSON(ctx, "/portfolio/equity/"+symbol, body, nil)
}

// RecordDividend registers a cash dividend against d.Symbol.
func (c *Client) RecordDividend(ctx context.Context, d models.Dividend) error {
	return c.postJSON(ctx, "/portfolio/equity/"+d.Symbol+"/dividend", d, nil)
}

// Transactions fetches the trade ledger across all symbols.
func (c *Client) Transactions(ctx context.Context) ([]models.EquityTransaction, error) {
	var resp struct {
		Transactions []models.EquityTransaction `json:"transactions"`
	}
	if err := c.getJSON(ctx, "/portfolio/equity/transactions", &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (c *Client) SymbolTransactions(ctx context.Context, symbol string) ([]models.EquityTransaction, error) {
	var resp struct {
		Transactions []models.EquityTransaction `json:"transactions"`
	}
	if err := c.getJSON(ctx, "/portfolio/equity/"+symbol+"/transactions", &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (c *Client) OwnedDividends(ctx context.Context) ([]models.Dividend, error) {
	var resp struct {
		Dividends []models.Dividend `json:"dividends"`
	}
	if err := c.getJSON(ctx, "/companies/dividend?own=true", &resp); err != nil {
		return nil, err
	}
	return resp.Dividends, nil
}

func (c *Client) FixedDeposits(ctx context.Context) ([]models.FixedDeposit, error) {
	var fds []models.FixedDeposit
	if err := c.getJSON(ctx, "/portfolio/fd", &fds); err != nil {
		return nil, err
	}
	return fds, nil
}

// AddFixedDeposit submits a new deposit; the server fills in the computed
// maturity value and the returned record carries it.
func (c *Client) AddFixedDeposit(ctx context.Context, fd models.FixedDeposit) (*models.FixedDeposit, error) {
	var created models.FixedDeposit
	if err := c.postJSON(ctx, "/portfolio/fd", fd, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Bonds(ctx context.Context) ([]models.Bond, error) {
	var bonds []models.Bond
	if err := c.getJSON(ctx, "/portfolio/bonds", &bonds); err != nil {
		return nil, err
	}
	return bonds, nil
}

func (c *Client) AddBond(ctx context.Context, b models.Bond) (*models.Bond, error) {
	var created models.Bond
	if err := c.postJSON(ctx, "/portfolio/bonds", b, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) IndexFunds(ctx context.Context) ([]models.IndexFund, error) {
	var funds []models.IndexFund
	if err := c.getJSON(ctx, "/portfolio/index-funds", &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

func (c *Client) AddIndexFund(ctx context.Context, f models.IndexFund) (*models.IndexFund, error) {
	var created models.IndexFund
	if err := c.postJSON(ctx, "/portfolio/index-funds", f, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) FXDeposits(ctx context.Context) ([]models.FXDeposit, error) {
	var deposits []models.FXDeposit
	if err := c.getJSON(ctx, "/portfolio/fx", &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

func (c *Client) AddFXDeposit(ctx context.Context, d models.FXDeposit) (*models.FXDeposit, error) {
	var created models.FXDeposit
	if err := c.postJSON(ctx, "/portfolio/fx", d, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) OtherIncome(ctx context.Context) ([]models.OtherIncome, error) {
	var incomes []models.OtherIncome
	if err := c.getJSON(ctx, "/portfolio/other-income", &incomes); err != nil {
		return nil, err
	}
	return incomes, nil
}

func (c *Client) AddOtherIncome(ctx context.Context, o models.OtherIncome) (*models.OtherIncome, error) {
	var created models.OtherIncome
	if err := c.postJSON(ctx, "/portfolio/other-income", o, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
