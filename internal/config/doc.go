// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package config loads and validates the recommendation service configuration.
//
// Configuration is layered with Koanf v2:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/saifi/config.yaml)
//  3. Environment variables (highest priority)
//
// Environment variables keep the legacy deployment names:
//
//	SAIFI_MODEL_PATH               recommend.model_path
//	SAIFI_CHILD_ENCODER_PATH       recommend.child_encoder_path
//	SAIFI_ACTIVITY_ENCODER_PATH    recommend.activity_encoder_path
//	SAIFI_AI_REFRESH_TTL_SECONDS   recommend.refresh_ttl_seconds
//	DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD, DB_SSLMODE
//
// Artifact paths accept plain filesystem paths, file:// URLs and gs:// URLs.
package config
