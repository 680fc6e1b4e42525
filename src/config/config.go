package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// Pagination for GET /expense
	ExpensePageSize int

	// Upload limits for the expense CSV import
	MaxUploadSizeBytes int64

	// Report caches
	ReportCacheExpiry  time.Duration
	ReportCacheCleanup time.Duration

	// CORS
	AllowedOrigins []string

	// Colombo Stock Exchange announcement proxy
	CSEBaseURL     string
	CSEHTTPTimeout time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found. Relying on OS environment variables and defaults.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	pageSize := getEnvAsInt("EXPENSE_PAGE_SIZE", 50)
	if pageSize < 1 {
		log.Printf("WARNING: Invalid EXPENSE_PAGE_SIZE %d, using default 50", pageSize)
		pageSize = 50
	}

	maxUploadStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUpload, err := strconv.ParseInt(maxUploadStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadStr, err)
		maxUpload = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "3000"),
		DatabasePath:       getEnv("DATABASE_PATH", "./finboard.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ExpensePageSize:    pageSize,
		MaxUploadSizeBytes: maxUpload,
		ReportCacheExpiry:  getEnvAsDuration("REPORT_CACHE_EXPIRY", 15*time.Minute),
		ReportCacheCleanup: getEnvAsDuration("REPORT_CACHE_CLEANUP", 30*time.Minute),
		AllowedOrigins: []string{
			getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		},
		CSEBaseURL:     getEnv("CSE_BASE_URL", "https://www.cse.lk"),
		CSEHTTPTimeout: getEnvAsDuration("CSE_HTTP_TIMEOUT", 20*time.Second),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, PageSize=%d",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.ExpensePageSize)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
