// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package services adapts the recommender's long-running components to
// suture.Service.
//
// Each wrapper follows the same contract: Serve blocks until its context is
// canceled and returns ctx.Err(); any other return is a failure that the
// supervisor restarts with backoff.
//
//   - HTTPServerService: the API server, drained gracefully on shutdown
//   - RefreshService: periodic TTL-guarded snapshot refresh
//   - TriggerService: the NATS data change subscriber
//   - UptimeService: the process uptime gauge
package services
