// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getHistogramCount extracts the sample count from a Prometheus histogram
func getHistogramCount(t *testing.T, h prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := h.(prometheus.Metric)
	if !ok {
		t.Fatal("observer is not a metric")
	}
	var m io_prometheus_client.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
		wantError string
	}{
		{
			name:      "successful read",
			operation: "SELECT",
			table:     "children",
			duration:  10 * time.Millisecond,
		},
		{
			name:      "failed query with short error",
			operation: "SELECT",
			table:     "activities",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
			wantError: "connection refused",
		},
		{
			name:      "failed query with long error is truncated",
			operation: "SELECT",
			table:     "interactions",
			duration:  50 * time.Millisecond,
			err:       errors.New(strings.Repeat("x", 80)),
			wantError: strings.Repeat("x", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := DBQueryDuration.WithLabelValues(tt.operation, tt.table)
			before := getHistogramCount(t, hist)

			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)

			if got := getHistogramCount(t, hist); got != before+1 {
				t.Errorf("histogram count = %d, want %d", got, before+1)
			}
			if tt.wantError != "" {
				got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantError))
				if got < 1 {
					t.Errorf("DBQueryErrors{%s} = %v, want >= 1", tt.wantError, got)
				}
			}
		})
	}
}

func TestRecordDBRows(t *testing.T) {
	before := testutil.ToFloat64(DBRowsRead.WithLabelValues("bookings"))
	RecordDBRows("bookings", 7)
	if got := testutil.ToFloat64(DBRowsRead.WithLabelValues("bookings")); got != before+7 {
		t.Errorf("DBRowsRead = %v, want %v", got, before+7)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/ai/recommend", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/ai/recommend", "200", 3*time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("APIRequestsTotal = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("APIActiveRequests = %v, want %v", got, before)
	}
}

func TestRecordRefreshTrigger(t *testing.T) {
	tests := []struct {
		origin string
		result string
	}{
		{"http", "rebuilt"},
		{"http", "throttled"},
		{"nats", "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.origin+"_"+tt.result, func(t *testing.T) {
			before := testutil.ToFloat64(RefreshTriggers.WithLabelValues(tt.origin, tt.result))
			RecordRefreshTrigger(tt.origin, tt.result)
			if got := testutil.ToFloat64(RefreshTriggers.WithLabelValues(tt.origin, tt.result)); got != before+1 {
				t.Errorf("RefreshTriggers = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordNATSMessage(t *testing.T) {
	received := testutil.ToFloat64(NATSMessagesReceived)
	failed := testutil.ToFloat64(NATSMessagesParseFailed)

	RecordNATSMessage(time.Millisecond, true)
	RecordNATSMessage(time.Millisecond, false)

	if got := testutil.ToFloat64(NATSMessagesReceived); got != received+2 {
		t.Errorf("NATSMessagesReceived = %v, want %v", got, received+2)
	}
	if got := testutil.ToFloat64(NATSMessagesParseFailed); got != failed+1 {
		t.Errorf("NATSMessagesParseFailed = %v, want %v", got, failed+1)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test")
	if n := testutil.CollectAndCount(AppInfo); n < 1 {
		t.Errorf("AppInfo series = %d, want >= 1", n)
	}
}

func TestRecordUptime(t *testing.T) {
	RecordUptime(time.Now().Add(-time.Minute))
	if got := testutil.ToFloat64(AppUptime); got < 59 {
		t.Errorf("AppUptime = %v, want >= 59", got)
	}
}

// TestMetricGathering checks the registry with the Prometheus linter
func TestMetricGathering(t *testing.T) {
	RecordDBQuery("SELECT", "children", time.Millisecond, nil)
	RecordAPIRequest("GET", "/ai/health", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s: %s", p.Metric, p.Text)
	}
}

func BenchmarkRecordDBQuery(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordDBQuery("SELECT", "children", time.Millisecond, nil)
	}
}
