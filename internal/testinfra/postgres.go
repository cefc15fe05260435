// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/saifi/internal/config"
)

const (
	// DefaultPostgresImage matches the production major version.
	DefaultPostgresImage = "postgres:16-alpine"

	// DefaultPostgresPort is the container side port.
	DefaultPostgresPort = "5432/tcp"

	defaultPostgresDB       = "saifi"
	defaultPostgresUser     = "saifi"
	defaultPostgresPassword = "saifi-test"
)

// PostgresContainer is a running Postgres instance seeded with nothing but
// an empty database.
type PostgresContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresOption configures the Postgres container.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	startTimeout time.Duration
}

// WithPostgresImage sets a custom Postgres image.
func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

// WithPostgresStartTimeout sets how long to wait for the server to accept
// connections.
func WithPostgresStartTimeout(timeout time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = timeout
	}
}

// NewPostgresContainer starts Postgres and waits until it accepts
// connections.
//
//	pg, err := testinfra.NewPostgresContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, pg)
//
//	store, err := database.Open(ctx, pg.DatabaseConfig(), zerolog.Nop())
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultPostgresPort},
		Env: map[string]string{
			"POSTGRES_DB":       defaultPostgresDB,
			"POSTGRES_USER":     defaultPostgresUser,
			"POSTGRES_PASSWORD": defaultPostgresPassword,
			"TZ":                "UTC",
		},
		// The entrypoint restarts the server once after initdb, so the
		// ready line appears twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(DefaultPostgresPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, DefaultPostgresPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		Host:      host,
		Port:      mapped.Int(),
		Database:  defaultPostgresDB,
		User:      defaultPostgresUser,
		Password:  defaultPostgresPassword,
	}, nil
}

// DatabaseConfig returns a store configuration pointing at the container.
func (p *PostgresContainer) DatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:          "postgres",
		Host:            p.Host,
		Port:            p.Port,
		Name:            p.Database,
		User:            p.User,
		Password:        p.Password,
		SSLMode:         "disable",
		MaxOpenConns:    4,
		ConnTimeout:     10 * time.Second,
		QueryTimeout:    30 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}
