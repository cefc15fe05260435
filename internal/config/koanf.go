// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/saifi/config.yaml",
	"/etc/saifi/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Path:            "/data/saifi.duckdb",
			Host:            "localhost",
			Port:            5432,
			Name:            "saifi",
			SSLMode:         "require",
			MaxOpenConns:    4,
			ConnTimeout:     10 * time.Second,
			QueryTimeout:    30 * time.Second,
			BreakerFailures: 3,
			BreakerTimeout:  30 * time.Second,
		},
		Recommend: RecommendConfig{
			ModelPath:            "saifi_model.gob.gz",
			ChildEncoderPath:     "child_encoder.json",
			ActivityEncoderPath:  "activity_encoder.json",
			RefreshTTLSeconds:    0,
			Alpha:                40.0,
			RefreshBudget:        2 * time.Second,
			RefreshOnStartup:     true,
			ForceRefreshInterval: 10 * time.Second,
			DefaultLimit:         10,
			MaxLimit:             100,
		},
		Training: TrainingConfig{
			Factors:        50,
			Iterations:     15,
			Regularization: 0.1,
			Workers:        0, // 0 = runtime.NumCPU()
			Seed:           42,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			Port:           4222,
			Subject:        "saifi.data.changed",
			QueueGroup:     "saifi-recommender",
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with the precedence ENV > File > Defaults,
// then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Artifacts and engine (legacy SAIFI_* names)
	"saifi_model_path":             "recommend.model_path",
	"saifi_child_encoder_path":     "recommend.child_encoder_path",
	"saifi_activity_encoder_path":  "recommend.activity_encoder_path",
	"saifi_ai_refresh_ttl_seconds": "recommend.refresh_ttl_seconds",
	"saifi_alpha":                  "recommend.alpha",
	"saifi_refresh_budget":         "recommend.refresh_budget",
	"saifi_refresh_on_startup":     "recommend.refresh_on_startup",
	"saifi_force_refresh_interval": "recommend.force_refresh_interval",
	"saifi_default_limit":          "recommend.default_limit",
	"saifi_max_limit":              "recommend.max_limit",
	"saifi_train_factors":          "training.factors",
	"saifi_train_iterations":       "training.iterations",
	"saifi_train_regularization":   "training.regularization",
	"saifi_train_workers":          "training.workers",
	"saifi_train_seed":             "training.seed",

	// Database
	"db_driver":           "database.driver",
	"db_dsn":              "database.dsn",
	"db_host":             "database.host",
	"db_port":             "database.port",
	"db_name":             "database.name",
	"db_user":             "database.user",
	"db_password":         "database.password",
	"db_sslmode":          "database.sslmode",
	"db_max_open_conns":   "database.max_open_conns",
	"db_query_timeout":    "database.query_timeout",
	"db_breaker_failures": "database.breaker_failures",
	"db_breaker_timeout":  "database.breaker_timeout",
	"duckdb_path":         "database.path",

	// NATS
	"nats_enabled":     "nats.enabled",
	"nats_url":         "nats.url",
	"nats_embedded":    "nats.embedded_server",
	"nats_port":        "nats.port",
	"nats_subject":     "nats.subject",
	"nats_queue_group": "nats.queue_group",

	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths:
//
//   - SAIFI_MODEL_PATH -> recommend.model_path
//   - DB_HOST -> database.host
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
