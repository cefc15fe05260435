// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

/*
Package api exposes the recommendation engine over HTTP using the chi router.

Endpoints:

  - GET /ai/recommend?child_id=&limit=: ranked activities for a child
  - GET /ai/health: engine readiness, snapshot statistics and datastore state
  - POST /ai/refresh: forced snapshot rebuild, throttled by the engine
  - GET /healthz, GET /readyz: liveness and readiness probes
  - GET /metrics: Prometheus exposition

Response Format:

The recommendation body is flat for compatibility with existing clients:

	{
	  "child_id": "c1",
	  "source": "als",
	  "snapshot_version": 4,
	  "recommendations": [
	    {"activity_id": "a7", "activity_name": "Swimming", "score": 0.91,
	     "distance_km": 1.37, "category": "sports", "price": 100,
	     "duration_hours": 2, "min_age": 5, "max_age": 10,
	     "lat": 24.71, "lng": 46.67, "source": "als"}
	  ]
	}

A fallback result adds "reason" (unknown_child, no_matrix or
scoring_failed). Errors use the APIResponse envelope:

	{"success": false, "error": {"code": "VALIDATION_ERROR",
	 "message": "child_id is required", "request_id": "..."}}

Middleware:

Every route gets request ids, real-IP extraction, panic recovery, CORS and
Prometheus instrumentation. Rate limits are per client IP: a default
bucket for recommendations, a strict one for forced refreshes and a
permissive one for health probes.
*/
package api
