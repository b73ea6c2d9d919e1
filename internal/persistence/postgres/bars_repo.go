// Package postgres implements the bars provider and regime snapshot
// storage on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/quantgate/quantgate/internal/data"
)

// Config holds connection settings with env overrides.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// ConfigFromEnv reads PG_* variables over sensible defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    30 * time.Second,
	}
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		cfg.DSN = dsn
	}
	if v := os.Getenv("PG_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxOpenConns = n
		}
	}
	if v := os.Getenv("PG_MAX_IDLE_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxIdleConns = n
		}
	}
	if v := os.Getenv("PG_CONN_MAX_LIFETIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ConnMaxLifetime = d
		}
	}
	if v := os.Getenv("PG_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.QueryTimeout = d
		}
	}
	return cfg
}

// Connect opens the pool.
func Connect(cfg Config) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN not configured")
	}
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// BarsRepo serves daily bars from the daily_bars table and satisfies
// data.BarsProvider.
type BarsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewBarsRepo(db *sqlx.DB, timeout time.Duration) *BarsRepo {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BarsRepo{db: db, timeout: timeout}
}

// DailyBars returns the closes in [start, end], oldest first. An unknown
// symbol yields an empty slice, not an error.
func (r *BarsRepo) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]data.Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ds, close
		FROM daily_bars
		WHERE symbol = $1 AND ds BETWEEN $2 AND $3
		ORDER BY ds ASC`

	var bars []data.Bar
	if err := r.db.SelectContext(ctx, &bars, query, symbol, start, end); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("select daily bars for %s: %w", symbol, err)
	}
	return bars, nil
}

// UpsertBars writes a batch of bars for one symbol.
func (r *BarsRepo) UpsertBars(ctx context.Context, symbol string, bars []data.Bar) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO daily_bars (symbol, ds, close)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, ds) DO UPDATE SET close = EXCLUDED.close`

	for _, bar := range bars {
		if _, err := r.db.ExecContext(ctx, query, symbol, bar.Date, bar.Close); err != nil {
			return fmt.Errorf("upsert bar %s %s: %w", symbol, bar.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}
