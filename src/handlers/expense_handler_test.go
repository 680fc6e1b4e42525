package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/finboard/backend/src/config"
	"github.com/username/finboard/backend/src/database"
	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/parsers"
	"github.com/username/finboard/backend/src/services"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		ExpensePageSize:    3,
		MaxUploadSizeBytes: 1 << 20,
		ReportCacheExpiry:  time.Minute,
		ReportCacheCleanup: time.Minute,
	}
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	reportCache := cache.New(time.Minute, time.Minute)

	expenseHandler := NewExpenseHandler(services.NewExpenseService(parsers.NewExpenseCSVParser(), reportCache))
	portfolioHandler := NewPortfolioHandler(services.NewPortfolioService(reportCache))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/expense", expenseHandler.HandleListExpenses)
	mux.HandleFunc("POST /api/v1/expense", expenseHandler.HandleImportRecords)
	mux.HandleFunc("POST /api/v1/expense/upload", expenseHandler.HandleUpload)
	mux.HandleFunc("GET /api/v1/expense/summary", expenseHandler.HandleSummary)
	mux.HandleFunc("GET /api/v1/portfolio/equity", portfolioHandler.HandleGetHoldings)
	mux.HandleFunc("POST /api/v1/portfolio/equity/{symbol}/buy", portfolioHandler.HandleBuy)
	mux.HandleFunc("POST /api/v1/portfolio/equity/{symbol}/sell", portfolioHandler.HandleSell)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestExpenseEndpoints(t *testing.T) {
	mux := newTestMux(t)

	records := []map[string]any{
		{"date": "2025-01-05", "category": "Food", "subcategory": "Groceries", "description": "shop", "amount": 600.0},
		{"date": "2025-01-09", "category": "Food", "subcategory": "Dining", "description": "dinner", "amount": 150.0},
	}
	rec := doJSON(t, mux, http.MethodPost, "/api/v1/expense",
		map[string]any{"year": 2025, "month": 1, "records": records})
	if rec.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/v1/expense?year=2025&month=1&page=1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var page services.ExpensePage
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(page.Expenses) != 2 || page.HasNextPage {
			t.Errorf("unexpected page: %+v", page)
		}
	})

	t.Run("missing year is 400", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/v1/expense?month=1", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		var envelope map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil || envelope["error"] == "" {
			t.Errorf("expected JSON error envelope, got %s", rec.Body.String())
		}
	})

	t.Run("summary", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/v1/expense/summary", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"2025-01"`) {
			t.Errorf("summary missing month key: %s", rec.Body.String())
		}
	})
}

func TestUploadGuards(t *testing.T) {
	mux := newTestMux(t)

	buildUpload := func(contentType, fileBody string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("year", "2025")
		mw.WriteField("month", "2")

		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="expenses.csv"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write([]byte(fileBody))
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/expense/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid csv accepted", func(t *testing.T) {
		rec := buildUpload("text/csv", "Date,Amount,Category,Subcategory,Description\n2025-02-01,10,Food,Groceries,x\n")
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("spreadsheet content type rejected", func(t *testing.T) {
		rec := buildUpload("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "whatever")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("binary content rejected by sniffing", func(t *testing.T) {
		rec := buildUpload("text/csv", "\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestSellStatusMapping(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/portfolio/equity/LOLC/buy",
		map[string]any{"qtty": 10, "price": 100.0, "date": "2025-01-10"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("buy status = %d, body %s", rec.Code, rec.Body.String())
	}

	t.Run("oversell is 422", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/v1/portfolio/equity/LOLC/sell",
			map[string]any{"qtty": 20, "price": 120.0, "date": "2025-02-01"})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("unknown symbol is 404", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/v1/portfolio/equity/GHOST/sell",
			map[string]any{"qtty": 1, "price": 10.0, "date": "2025-02-01"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("valid sell returns realized p/l", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/v1/portfolio/equity/LOLC/sell",
			map[string]any{"qtty": 5, "price": 150.0, "date": "2025-02-01"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			ProfitLoss float64 `json:"profit_loss"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.ProfitLoss != 250 {
			t.Errorf("profit_loss = %.2f, want 250", resp.ProfitLoss)
		}
	})
}
