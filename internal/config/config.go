// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Training  TrainingConfig  `koanf:"training"`
	NATS      NATSConfig      `koanf:"nats"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig describes the relational store the snapshot is read from.
//
// Driver "duckdb" opens Path (":memory:" is allowed). Driver "postgres" uses DSN
// when set, otherwise the discrete Host/Port/Name/User/Password/SSLMode fields.
type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	Path     string `koanf:"path"`
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"sslmode"`

	MaxOpenConns int           `koanf:"max_open_conns"`
	ConnTimeout  time.Duration `koanf:"conn_timeout"`
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// Circuit breaker around snapshot reads
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// PostgresDSN returns the connection string for the postgres driver.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}

	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	if d.ConnTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(d.ConnTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RecommendConfig configures the serving engine.
type RecommendConfig struct {
	ModelPath           string `koanf:"model_path"`
	ChildEncoderPath    string `koanf:"child_encoder_path"`
	ActivityEncoderPath string `koanf:"activity_encoder_path"`

	// RefreshTTLSeconds of 0 disables the staleness guard and the periodic
	// refresh service; refreshes then only happen on demand or by trigger.
	RefreshTTLSeconds int     `koanf:"refresh_ttl_seconds"`
	Alpha             float64 `koanf:"alpha"`

	RefreshBudget        time.Duration `koanf:"refresh_budget"`
	RefreshOnStartup     bool          `koanf:"refresh_on_startup"`
	ForceRefreshInterval time.Duration `koanf:"force_refresh_interval"`

	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

// RefreshTTL returns the TTL as a duration.
func (r RecommendConfig) RefreshTTL() time.Duration {
	return time.Duration(r.RefreshTTLSeconds) * time.Second
}

// TrainingConfig holds hyperparameters for the offline trainer.
type TrainingConfig struct {
	Factors        int     `koanf:"factors"`
	Iterations     int     `koanf:"iterations"`
	Regularization float64 `koanf:"regularization"`
	Workers        int     `koanf:"workers"`
	Seed           int64   `koanf:"seed"`
}

// NATSConfig configures event-driven refresh triggers.
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	Port           int           `koanf:"port"`
	Subject        string        `koanf:"subject"`
	QueueGroup     string        `koanf:"queue_group"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
}

// SecurityConfig holds HTTP edge protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional config file and the
// environment. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
