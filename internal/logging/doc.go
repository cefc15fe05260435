// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package logging provides the zerolog-based structured logger shared by the
// recommendation service.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("child_id", id).Msg("Serving recommendations")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Refresh degraded")
//
// Components derive their own logger with a component field:
//
//	logger := logging.WithComponent("refresh")
//
// # slog bridge
//
// Suture (through sutureslog) and Watermill log through log/slog. Use
// NewSlogLogger to route those messages into the same zerolog output.
//
// # Configuration
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
package logging
