// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package eventprocessor

import (
	"time"

	"github.com/tomtom215/saifi/internal/config"
)

// DefaultSubject carries data change notifications from the CRUD services.
const DefaultSubject = "saifi.data.changed"

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host string
	// Port -1 picks a random free port.
	Port int
}

// DefaultServerConfig returns defaults for the embedded NATS server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host: "127.0.0.1",
		Port: 4222,
	}
}

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultPublisherConfig returns production defaults for publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:           url,
		MaxReconnects: -1, // Unlimited
		ReconnectWait: 2 * time.Second,
	}
}

// SubscriberConfig holds subscriber configuration.
//
// Notifications are plain core NATS messages. They are hints that the store
// changed, so a lost message only delays a refresh until the next TTL tick.
type SubscriberConfig struct {
	URL              string
	Subject          string
	QueueGroup       string
	SubscribersCount int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration
}

// DefaultSubscriberConfig returns production defaults for subscriber.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:              url,
		Subject:          DefaultSubject,
		QueueGroup:       "saifi-recommender",
		SubscribersCount: 1,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}

// SubscriberConfigFrom maps the nats section of the service configuration.
// url overrides cfg.URL when non-empty, for the embedded server case.
func SubscriberConfigFrom(cfg config.NATSConfig, url string) SubscriberConfig {
	if url == "" {
		url = cfg.URL
	}
	sc := DefaultSubscriberConfig(url)
	if cfg.Subject != "" {
		sc.Subject = cfg.Subject
	}
	if cfg.QueueGroup != "" {
		sc.QueueGroup = cfg.QueueGroup
	}
	if cfg.MaxReconnects != 0 {
		sc.MaxReconnects = cfg.MaxReconnects
	}
	if cfg.ReconnectWait > 0 {
		sc.ReconnectWait = cfg.ReconnectWait
	}
	return sc
}
