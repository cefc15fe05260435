// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

/*
Package main is the entry point for the Saifi recommendation service.

The service answers "which activities should this child try next" from an
ALS model trained offline by cmd/trainer, re-ranked by distance to the
child's usual provider. Children the model has never seen get the most
popular activities instead.

# Startup

 1. Configuration: koanf layered defaults, config file and environment
 2. Logging: global zerolog logger
 3. Data store: DuckDB file or Postgres via pgx, behind a circuit breaker
 4. Artifacts: model and encoders from local disk or gs:// (fatal if missing)
 5. First snapshot: forced refresh from the store (degraded if it fails)
 6. Supervisor tree: HTTP server, periodic refresh, NATS triggers

# Supervisor Tree

	RootSupervisor ("saifi")
	├── EngineSupervisor ("engine-layer")
	│   ├── RefreshService (when recommend.refresh_ttl_seconds > 0)
	│   └── UptimeService
	├── MessagingSupervisor ("messaging-layer")
	│   └── TriggerService (when nats.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

# Endpoints

	GET  /ai/recommend?child_id=...&limit=10
	GET  /ai/health
	POST /ai/refresh
	GET  /healthz, /readyz, /metrics

# Example Usage

	export SAIFI_MODEL_PATH=gs://saifi-models/als_model.gob.gz
	export SAIFI_CHILD_ENCODER_PATH=gs://saifi-models/child_encoder.json
	export SAIFI_ACTIVITY_ENCODER_PATH=gs://saifi-models/activity_encoder.json
	export DB_HOST=postgres DB_NAME=saifi DB_USER=saifi DB_PASSWORD=...
	export SAIFI_AI_REFRESH_TTL_SECONDS=300
	./saifi-server

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for server.shutdown_timeout, the NATS subscriber is
closed after the tree stops, and the data store is closed last.
*/
package main
