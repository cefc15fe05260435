// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/config"
	"github.com/tomtom215/saifi/internal/recommend"
)

const (
	// DriverDuckDB selects the embedded DuckDB driver.
	DriverDuckDB = "duckdb"
	// DriverPostgres selects Postgres through pgx.
	DriverPostgres = "postgres"

	defaultQueryTimeout = 30 * time.Second
)

// Store wraps the connection pool and provides the snapshot views.
type Store struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	dialect dialect
	breaker *circuitBreaker
	logger  zerolog.Logger
}

var _ recommend.DataSource = (*Store)(nil)

// Open opens the store described by cfg and verifies connectivity.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger = logger.With().Str("component", "database").Str("driver", cfg.Driver).Logger()
	s := &Store{
		conn:    conn,
		cfg:     cfg,
		dialect: d,
		breaker: newCircuitBreaker("datastore", cfg.BreakerFailures, cfg.BreakerTimeout, logger),
		logger:  logger,
	}
	s.configureConnectionPool()

	if err := s.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info().Msg("database connection established")
	return s, nil
}

// dataSourceName builds the driver specific connection string.
func dataSourceName(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverDuckDB:
		if cfg.Path == ":memory:" || cfg.Path == "" {
			return "", nil
		}
		// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		return cfg.Path, nil
	case DriverPostgres:
		return cfg.PostgresDSN(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// configureConnectionPool sets connection pool parameters
func (s *Store) configureConnectionPool() {
	maxOpen := s.cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 4
	}
	s.conn.SetMaxOpenConns(maxOpen)
	s.conn.SetMaxIdleConns(min(2, maxOpen))
	s.conn.SetConnMaxLifetime(time.Hour)
	s.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Conn returns the underlying SQL database connection.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.cfg.Driver
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// queryContext bounds ctx by the configured query timeout.
func (s *Store) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
