// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with a custom "entityid" rule
// and translates failures into the API error envelope.
//
// # Request Types
//
//   - RecommendRequest: query parameters of GET /ai/recommend
//   - DataChangedEvent: payload of data-changed notifications on NATS
//
// Field names in errors follow the `query` or `json` tag, so a missing
// child id is reported as "child_id is required".
//
// # Usage
//
//	req := validation.RecommendRequest{ChildID: r.URL.Query().Get("child_id")}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // write 400 with apiErr.Code and apiErr.Message
//	}
package validation
