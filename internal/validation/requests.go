// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package validation

// RecommendRequest holds the query parameters of GET /ai/recommend after
// parsing. Limit zero means the configured default; values above the
// configured maximum are clamped by the handler rather than rejected.
type RecommendRequest struct {
	ChildID string `query:"child_id" validate:"required,entityid"`
	Limit   int    `query:"limit" validate:"gte=0"`
}

// DataChangedEvent is the payload published on the data-changed subject.
// Every field is optional; an empty body is a valid notification.
type DataChangedEvent struct {
	Entity string `json:"entity" validate:"omitempty,oneof=child activity booking feedback provider"`
	ID     string `json:"id" validate:"omitempty,entityid"`
	Action string `json:"action" validate:"omitempty,oneof=created updated deleted"`
}
