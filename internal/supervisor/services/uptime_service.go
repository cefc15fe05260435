// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package services

import (
	"context"
	"time"

	"github.com/tomtom215/saifi/internal/metrics"
)

// UptimeService publishes the process uptime gauge.
type UptimeService struct {
	start    time.Time
	interval time.Duration
}

// NewUptimeService reports uptime since start every interval (default 15s).
func NewUptimeService(start time.Time, interval time.Duration) *UptimeService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &UptimeService{start: start, interval: interval}
}

// Serve implements suture.Service.
func (u *UptimeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	metrics.RecordUptime(u.start)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.RecordUptime(u.start)
		}
	}
}

func (u *UptimeService) String() string {
	return "uptime"
}
