/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/slotguide/internal/config"
)

// Connect establishes a gorm DB connection for the configured backend.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return Open(cfg.DBBackend, cfg.DBDSN, cfg.Environment == "development")
}

// Open connects to dsn using backend. SQL statements are logged when
// verbose is set.
func Open(backend config.DatabaseBackend, dsn string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch backend {
	case config.DatabasePostgres:
		dialector = postgres.Open(dsn)
	case config.DatabaseMySQL:
		dialector = mysql.Open(dsn)
	case config.DatabaseSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidBackend, backend)
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", backend, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if backend == config.DatabaseSQLite {
		// A single writer avoids "database is locked" and keeps :memory: to one connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := RegisterCallbacks(db); err != nil {
		return nil, fmt.Errorf("register callbacks: %w", err)
	}

	return db, nil
}

// Setup connects and migrates, returning nil when no DSN is configured.
func Setup(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.DBDSN == "" {
		log.Debug().Msg("audit database disabled")
		return nil, nil
	}
	database, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(database); err != nil {
		_ = Close(database)
		return nil, err
	}
	log.Info().Str("backend", string(cfg.DBBackend)).Msg("audit database ready")
	return database, nil
}

// Close releases database resources.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
