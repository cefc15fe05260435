// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saifi/internal/config"
	"github.com/tomtom215/saifi/internal/eventprocessor"
)

// NATSComponents holds the data change trigger pipeline.
type NATSComponents struct {
	server  *eventprocessor.EmbeddedServer
	trigger *eventprocessor.TriggerSubscriber
	logger  zerolog.Logger
}

// InitNATS starts the embedded server if configured and connects the
// trigger subscriber. Returns nil, nil when NATS is disabled.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func InitNATS(cfg *config.Config, refresher eventprocessor.Refresher, logger zerolog.Logger) (*NATSComponents, error) {
	if !cfg.NATS.Enabled {
		logger.Info().Msg("NATS refresh triggers disabled")
		return nil, nil
	}

	components := &NATSComponents{logger: logger}

	url := ""
	if cfg.NATS.EmbeddedServer {
		serverCfg := eventprocessor.DefaultServerConfig()
		if cfg.NATS.Port != 0 {
			serverCfg.Port = cfg.NATS.Port
		}
		srv, err := eventprocessor.NewEmbeddedServer(serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		components.server = srv
		url = srv.ClientURL()
		logger.Info().Str("url", url).Msg("embedded NATS server started")
	}

	subCfg := eventprocessor.SubscriberConfigFrom(cfg.NATS, url)
	sub, err := eventprocessor.NewSubscriber(subCfg, eventprocessor.NewWatermillLogger())
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	handler := eventprocessor.NewTriggerHandler(refresher, eventprocessor.TriggerConfig{
		TrailingDelay: cfg.Recommend.ForceRefreshInterval,
	}, logger)
	components.trigger = eventprocessor.NewTriggerSubscriber(sub, handler, subCfg.Subject)

	logger.Info().
		Str("url", subCfg.URL).
		Str("subject", subCfg.Subject).
		Str("queue_group", subCfg.QueueGroup).
		Msg("NATS refresh triggers enabled")

	return components, nil
}

// Trigger returns the subscriber to run under supervision.
func (n *NATSComponents) Trigger() *eventprocessor.TriggerSubscriber {
	return n.trigger
}

// Shutdown closes the subscriber, then the embedded server. Call it after
// the supervisor tree has stopped.
func (n *NATSComponents) Shutdown(ctx context.Context) {
	if n == nil {
		return
	}
	if n.trigger != nil {
		if err := n.trigger.Close(); err != nil {
			n.logger.Warn().Err(err).Msg("error closing NATS subscriber")
		}
	}
	if n.server != nil {
		if err := n.server.Shutdown(ctx); err != nil {
			n.logger.Warn().Err(err).Msg("error shutting down embedded NATS server")
		}
	}
}
