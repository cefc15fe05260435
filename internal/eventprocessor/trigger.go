// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package eventprocessor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/metrics"
	"github.com/tomtom215/saifi/internal/recommend"
	"github.com/tomtom215/saifi/internal/validation"
)

// Refresher is the engine surface a trigger needs.
type Refresher interface {
	TriggerRefresh(ctx context.Context) (recommend.RefreshOutcome, error)
}

// TriggerConfig tunes how notifications turn into refreshes.
type TriggerConfig struct {
	// TrailingDelay is how long to wait before retrying a throttled
	// trigger. It should match the engine's forced refresh interval.
	TrailingDelay time.Duration
	// RefreshTimeout bounds a single triggered rebuild.
	RefreshTimeout time.Duration
}

// TriggerHandler turns data change notifications into forced refreshes.
//
// Bursts are coalesced: a notification that hits the engine's throttle
// arms a single trailing refresh, so the last change in a burst is always
// picked up without rebuilding once per message.
type TriggerHandler struct {
	refresher Refresher
	config    TriggerConfig
	logger    zerolog.Logger

	mu       sync.Mutex
	trailing *time.Timer
	stopped  bool
	wg       sync.WaitGroup
}

// NewTriggerHandler creates a handler for refresher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTriggerHandler(refresher Refresher, cfg TriggerConfig, logger zerolog.Logger) *TriggerHandler {
	if cfg.TrailingDelay <= 0 {
		cfg.TrailingDelay = 10 * time.Second
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = time.Minute
	}
	return &TriggerHandler{
		refresher: refresher,
		config:    cfg,
		logger:    logger.With().Str("component", "refresh-trigger").Logger(),
	}
}

// Handle processes one notification. Malformed payloads are logged and
// dropped. It never returns an error: a failed refresh keeps the previous
// snapshot and redelivery would only add load on a struggling store.
func (h *TriggerHandler) Handle(ctx context.Context, msg *message.Message) error {
	start := time.Now()

	event, err := decodeDataChanged(msg.Payload)
	if err != nil {
		metrics.RecordNATSMessage(time.Since(start), false)
		h.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed data change notification")
		return nil
	}

	h.logger.Debug().
		Str("entity", event.Entity).
		Str("id", event.ID).
		Str("action", event.Action).
		Msg("data change notification received")

	h.trigger(ctx)
	metrics.RecordNATSMessage(time.Since(start), true)
	return nil
}

func (h *TriggerHandler) trigger(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.config.RefreshTimeout)
	defer cancel()

	outcome, err := h.refresher.TriggerRefresh(ctx)
	switch {
	case errors.Is(err, recommend.ErrRefreshThrottled):
		metrics.RecordRefreshTrigger("nats", "throttled")
		h.armTrailing(ctx)
	case err != nil:
		metrics.RecordRefreshTrigger("nats", "failed")
		h.logger.Warn().Err(err).Msg("triggered refresh failed, previous snapshot kept")
	default:
		metrics.RecordRefreshTrigger("nats", outcome.String())
	}
}

// armTrailing schedules one retry after the throttle window. Further
// throttled notifications while it is armed are absorbed by it.
func (h *TriggerHandler) armTrailing(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.trailing != nil || h.stopped {
		return
	}

	parent := context.WithoutCancel(ctx)
	h.wg.Add(1)
	h.trailing = time.AfterFunc(h.config.TrailingDelay, func() {
		defer h.wg.Done()
		h.mu.Lock()
		h.trailing = nil
		h.mu.Unlock()

		h.logger.Debug().Msg("running trailing refresh for throttled notifications")
		h.trigger(parent)
	})
}

// resume re-enables trailing refreshes after Stop, for a restarted subscriber.
func (h *TriggerHandler) resume() {
	h.mu.Lock()
	h.stopped = false
	h.mu.Unlock()
}

// Stop cancels a pending trailing refresh and waits for a running one.
func (h *TriggerHandler) Stop() {
	h.mu.Lock()
	h.stopped = true
	if h.trailing != nil && h.trailing.Stop() {
		h.trailing = nil
		h.wg.Done()
	}
	h.mu.Unlock()
	h.wg.Wait()
}

// decodeDataChanged accepts an empty payload as a bare notification.
func decodeDataChanged(payload []byte) (*validation.DataChangedEvent, error) {
	event := &validation.DataChangedEvent{}
	if len(bytes.TrimSpace(payload)) == 0 {
		return event, nil
	}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if verr := validation.ValidateStruct(event); verr != nil {
		return nil, verr
	}
	return event, nil
}

// TriggerSubscriber consumes the notification subject and drives a
// TriggerHandler until its context is canceled.
type TriggerSubscriber struct {
	subscriber *Subscriber
	handler    *TriggerHandler
	subject    string
}

// NewTriggerSubscriber binds handler to sub on subject.
func NewTriggerSubscriber(sub *Subscriber, handler *TriggerHandler, subject string) *TriggerSubscriber {
	if subject == "" {
		subject = DefaultSubject
	}
	return &TriggerSubscriber{subscriber: sub, handler: handler, subject: subject}
}

// Run blocks until ctx is canceled. Pending trailing refreshes are stopped
// before it returns.
func (t *TriggerSubscriber) Run(ctx context.Context) error {
	t.handler.resume()
	defer t.handler.Stop()
	return t.subscriber.NewMessageHandler(t.subject).
		Handle(t.handler.Handle).
		Run(ctx)
}

// Subject returns the subscribed subject.
func (t *TriggerSubscriber) Subject() string {
	return t.subject
}

// Close closes the underlying subscriber.
func (t *TriggerSubscriber) Close() error {
	return t.subscriber.Close()
}
