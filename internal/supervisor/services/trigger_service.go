// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package services

import (
	"context"
	"errors"
	"fmt"
)

// TriggerRunner is satisfied by *eventprocessor.TriggerSubscriber.
type TriggerRunner interface {
	Run(ctx context.Context) error
	Subject() string
}

// TriggerService runs the NATS data change subscriber under supervision.
// A subscription that ends early (for example, the connection was closed)
// is reported as an error so suture restarts it.
type TriggerService struct {
	runner TriggerRunner
	name   string
}

// NewTriggerService wraps runner.
func NewTriggerService(runner TriggerRunner) *TriggerService {
	return &TriggerService{
		runner: runner,
		name:   "nats-trigger",
	}
}

// Serve implements suture.Service.
func (s *TriggerService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("subscription closed")
	}
	return fmt.Errorf("trigger subscriber on %s: %w", s.runner.Subject(), err)
}

// String names the service in suture's log events.
func (s *TriggerService) String() string {
	return s.name
}
