package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/finboard/backend/src/config"
	"github.com/username/finboard/backend/src/database"
	"github.com/username/finboard/backend/src/handlers"
	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/parsers"
	"github.com/username/finboard/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(config.Cfg.AllowedOrigins))
	for _, origin := range config.Cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Finboard backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheExpiry, config.Cfg.ReportCacheCleanup)

	logger.L.Info("Initializing services and handlers...")
	csvParser := parsers.NewExpenseCSVParser()
	expenseService := services.NewExpenseService(csvParser, reportCache)
	portfolioService := services.NewPortfolioService(reportCache)
	announcementService := services.NewAnnouncementService()

	expenseHandler := handlers.NewExpenseHandler(expenseService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Expenses
	apiRouter.HandleFunc("GET /api/v1/expense", expenseHandler.HandleListExpenses)
	apiRouter.HandleFunc("POST /api/v1/expense", expenseHandler.HandleImportRecords)
	apiRouter.HandleFunc("POST /api/v1/expense/upload", expenseHandler.HandleUpload)
	apiRouter.HandleFunc("GET /api/v1/expense/summary", expenseHandler.HandleSummary)
	apiRouter.HandleFunc("GET /api/v1/expense/admin/summary", expenseHandler.HandleImportedMonths)
	apiRouter.HandleFunc("DELETE /api/v1/expense/admin", expenseHandler.HandleDeleteMonth)
	apiRouter.HandleFunc("GET /api/v1/expense/categories", expenseHandler.HandleGetCategories)
	apiRouter.HandleFunc("POST /api/v1/expense/categories", expenseHandler.HandleAddCategory)
	apiRouter.HandleFunc("PUT /api/v1/expense/categories/{id}", expenseHandler.HandleUpdateCategory)
	apiRouter.HandleFunc("DELETE /api/v1/expense/categories/{id}", expenseHandler.HandleDeleteCategory)

	// Equity portfolio
	apiRouter.HandleFunc("GET /api/v1/portfolio/equity", portfolioHandler.HandleGetHoldings)
	apiRouter.HandleFunc("GET /api/v1/portfolio/equity/transactions", portfolioHandler.HandleGetTransactions)
	apiRouter.HandleFunc("GET /api/v1/portfolio/equity/{symbol}/transactions", portfolioHandler.HandleGetSymbolTransactions)
	apiRouter.HandleFunc("POST /api/v1/portfolio/equity/{symbol}", portfolioHandler.HandleUpsertNote)
	apiRouter.HandleFunc("POST /api/v1/portfolio/equity/{symbol}/buy", portfolioHandler.HandleBuy)
	apiRouter.HandleFunc("POST /api/v1/portfolio/equity/{symbol}/sell", portfolioHandler.HandleSell)
	apiRouter.HandleFunc("POST /api/v1/portfolio/equity/{symbol}/price", portfolioHandler.HandleSetPrice)
	apiRouter.HandleFunc("POST /api/v1/portfolio/equity/{symbol}/dividend", portfolioHandler.HandleRecordDividend)
	apiRouter.HandleFunc("GET /api/v1/portfolio/summary", portfolioHandler.HandleGetProfitSummary)

	// Other asset classes. "fixed-deposits" is kept as a POST alias for
	// older clients that still submit to the long name.
	apiRouter.HandleFunc("GET /api/v1/portfolio/fd", portfolioHandler.HandleGetFixedDeposits)
	apiRouter.HandleFunc("POST /api/v1/portfolio/fd", portfolioHandler.HandleAddFixedDeposit)
	apiRouter.HandleFunc("POST /api/v1/portfolio/fixed-deposits", portfolioHandler.HandleAddFixedDeposit)
	apiRouter.HandleFunc("GET /api/v1/portfolio/bonds", portfolioHandler.HandleGetBonds)
	apiRouter.HandleFunc("POST /api/v1/portfolio/bonds", portfolioHandler.HandleAddBond)
	apiRouter.HandleFunc("GET /api/v1/portfolio/index-funds", portfolioHandler.HandleGetIndexFunds)
	apiRouter.HandleFunc("POST /api/v1/portfolio/index-funds", portfolioHandler.HandleAddIndexFund)
	apiRouter.HandleFunc("GET /api/v1/portfolio/fx", portfolioHandler.HandleGetFXDeposits)
	apiRouter.HandleFunc("POST /api/v1/portfolio/fx", portfolioHandler.HandleAddFXDeposit)
	apiRouter.HandleFunc("GET /api/v1/portfolio/other-income", portfolioHandler.HandleGetOtherIncome)
	apiRouter.HandleFunc("POST /api/v1/portfolio/other-income", portfolioHandler.HandleAddOtherIncome)

	// Dividends and exchange announcements. The CSE proxy predates the v1
	// prefix and keeps its original paths.
	apiRouter.HandleFunc("GET /api/v1/companies/dividend", portfolioHandler.HandleGetDividends)
	apiRouter.HandleFunc("POST /api/cse", announcementHandler.HandleAnnouncements)
	apiRouter.HandleFunc("POST /api/cse/details", announcementHandler.HandleAnnouncementDetails)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Finboard backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
