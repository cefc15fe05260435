// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry at package init through
promauto and exposed by the HTTP server at /metrics.

# Available Metrics

Recommendation Metrics:
  - recommend_requests_total: Requests served (counter)
    Labels: source (als, fallback), reason (none, unknown_child, no_matrix, scoring_failed)
  - recommend_duration_seconds: Serving latency (histogram)
    Labels: source
  - recommend_items: Activities returned per request (histogram)

Snapshot Metrics:
  - recommend_refresh_total: Rebuilds by outcome (counter)
  - recommend_refresh_duration_seconds: Rebuild duration (histogram)
  - recommend_refresh_triggers_total: Forced refresh requests (counter)
    Labels: origin (http, nats), result
  - recommend_snapshot_version: Installed snapshot version (gauge)
  - recommend_snapshot_last_refresh_timestamp_seconds (gauge)
  - recommend_snapshot_entities: Children, activities, popular list and matrix size (gauge)
  - recommend_interaction_rows: Accepted and rejected rows of the last rebuild (gauge)

Data Store Metrics:
  - db_query_duration_seconds, db_query_errors_total, db_rows_read_total
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_consecutive_failures, circuit_breaker_state_transitions_total

HTTP and Trigger Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests,
    api_rate_limit_hits_total
  - nats_messages_received_total, nats_messages_parse_failed_total,
    nats_processing_duration_seconds

# Usage

Attach the engine observer once at startup:

	engine.SetObserver(metrics.EngineObserver{})

Example PromQL queries:

	# Share of requests served by the fallback path
	sum(rate(recommend_requests_total{source="fallback"}[5m])) / sum(rate(recommend_requests_total[5m]))

	# Seconds since the last successful rebuild
	time() - recommend_snapshot_last_refresh_timestamp_seconds

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
