// Package database persists trades, signals and daily summaries in
// PostgreSQL, and session state in Redis so the engine survives restarts
// mid-session.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pivot-trading-engine/internal/logging"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	Pool *pgxpool.Pool
	log  *logging.Logger
}

// Config holds database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDB connects to PostgreSQL and verifies the connection.
func NewDB(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log := logging.WithComponent("database")
	log.Info("Connected to PostgreSQL", "database", cfg.Database)
	return &DB{Pool: pool, log: log}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.log.Info("Database connection closed")
	}
}

// RunMigrations creates the schema if it does not exist.
func (db *DB) RunMigrations(ctx context.Context) error {
	db.log.Info("Running database migrations")

	migrations := []string{
		// One row per completed or open trade; trade_id is date + sequence.
		`CREATE TABLE IF NOT EXISTS trades (
			trade_id VARCHAR(20) PRIMARY KEY,
			instrument VARCHAR(10) NOT NULL,
			symbol VARCHAR(40) NOT NULL,
			strike INTEGER NOT NULL,
			option_type VARCHAR(2) NOT NULL,
			entry_time TIMESTAMPTZ NOT NULL,
			entry_price DECIMAL(12, 2) NOT NULL,
			entry_candle_low DECIMAL(12, 2) NOT NULL,
			exit_time TIMESTAMPTZ,
			exit_price DECIMAL(12, 2),
			exit_reason VARCHAR(12),
			scenario INTEGER NOT NULL,
			structure VARCHAR(10) NOT NULL,
			target_price DECIMAL(12, 2) NOT NULL,
			sl_price DECIMAL(12, 2) NOT NULL,
			candles_held INTEGER,
			first_candle_entry BOOLEAN NOT NULL DEFAULT FALSE,
			re_entry BOOLEAN NOT NULL DEFAULT FALSE,
			pnl_points DECIMAL(12, 2),
			pnl_rupees DECIMAL(14, 2),
			lot_size INTEGER NOT NULL,
			pivot_pp DECIMAL(12, 2),
			pivot_r1 DECIMAL(12, 2),
			pivot_r2 DECIMAL(12, 2),
			pivot_r3 DECIMAL(12, 2),
			pivot_r4 DECIMAL(12, 2),
			pivot_r5 DECIMAL(12, 2),
			pivot_s1 DECIMAL(12, 2),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_exit_reason ON trades(exit_reason)`,

		// Audit log of accepted entry and exit signals.
		`CREATE TABLE IF NOT EXISTS signals (
			signal_id UUID PRIMARY KEY,
			time TIMESTAMPTZ NOT NULL,
			instrument VARCHAR(10) NOT NULL,
			symbol VARCHAR(40) NOT NULL,
			strike INTEGER NOT NULL,
			option_type VARCHAR(2) NOT NULL,
			signal_type VARCHAR(10) NOT NULL,
			scenario INTEGER,
			structure VARCHAR(10),
			candle_open DECIMAL(12, 2),
			candle_high DECIMAL(12, 2),
			candle_low DECIMAL(12, 2),
			candle_close DECIMAL(12, 2),
			candle_size_pct DECIMAL(8, 4),
			pivot_pp DECIMAL(12, 2),
			pivot_r1 DECIMAL(12, 2),
			pivot_r2 DECIMAL(12, 2),
			pivot_r3 DECIMAL(12, 2),
			reason TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_time ON signals(time)`,

		// One row per trading day, recomputed from trades at close.
		`CREATE TABLE IF NOT EXISTS daily_summary (
			date DATE PRIMARY KEY,
			instrument VARCHAR(10) NOT NULL,
			total_trades INTEGER NOT NULL,
			wins INTEGER NOT NULL,
			losses INTEGER NOT NULL,
			win_rate DECIMAL(6, 2),
			gross_pnl DECIMAL(14, 2) NOT NULL,
			scenario_1_trades INTEGER DEFAULT 0,
			scenario_2_trades INTEGER DEFAULT 0,
			scenario_3_trades INTEGER DEFAULT 0,
			first_candle_entries INTEGER DEFAULT 0,
			intraday_entries INTEGER DEFAULT 0,
			stop_losses INTEGER DEFAULT 0,
			targets_hit INTEGER DEFAULT 0,
			timeouts INTEGER DEFAULT 0,
			eod_exits INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	db.log.Info("Database migrations completed")
	return nil
}
