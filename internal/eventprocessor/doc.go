// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package eventprocessor turns data change notifications on NATS into
// snapshot refreshes.
//
// Services that write children, activities, bookings or feedback publish a
// small JSON message on the "saifi.data.changed" subject:
//
//	{"entity": "booking", "id": "b-981", "action": "created"}
//
// Every field is optional and an empty payload is a valid notification.
// TriggerSubscriber consumes the subject through a Watermill core NATS
// subscriber in a queue group, so each notification reaches one replica.
// TriggerHandler calls the engine's throttled TriggerRefresh; a throttled
// notification arms one trailing refresh so a burst of writes costs at most
// two rebuilds.
//
// Notifications are hints, not a durable log. JetStream is not used: a lost
// message only delays the refresh until the next TTL tick.
//
// For single-instance deployments EmbeddedServer runs an in-process NATS
// server and the subscriber connects to its ClientURL.
package eventprocessor
