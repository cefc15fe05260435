// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

/*
Package middleware provides HTTP middleware components for the API.

Key Components:

  - RequestID: UUID-based request tracking, honouring an upstream X-Request-ID
  - PrometheusMetrics: request count, latency and in-flight instrumentation

Both are plain http.HandlerFunc wrappers. The api package adapts them to
chi's func(http.Handler) http.Handler form.

Usage Example:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	func handler(w http.ResponseWriter, r *http.Request) {
	    logging.Ctx(r.Context()).Info().Msg("serving") // carries request_id
	    id := middleware.GetRequestID(r.Context())
	}

The Prometheus endpoint label is the matched chi route pattern such as
"/ai/recommend", never the raw path, so arbitrary URLs cannot create new
series. Requests that match no route share the "unmatched" label.
*/
package middleware
