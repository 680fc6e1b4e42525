package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/finboard/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and brings the schema up to date.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	if err := db.Ping(); err != nil {
		stdlog.Fatalf("failed to ping database at %s: %v", databasePath, err)
	}

	// sqlite allows one writer; serializing through a single connection
	// avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	DB = db

	if logger.L != nil {
		logger.L.Info("Running database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Running database migrations for:", databasePath)
	}

	if err := RunMigrations(databasePath); err != nil {
		stdlog.Fatalf("failed to run migrations: %v", err)
	}

	if logger.L != nil {
		logger.L.Info("Database schema up to date.")
	}
}
