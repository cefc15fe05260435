// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

/*
Package supervisor runs the recommender's long-running services under a
suture v4 supervisor tree.

# Overview

Services are grouped into layers so that a failure restarts only its own
layer:

	RootSupervisor ("saifi")
	├── EngineSupervisor ("engine-layer")
	│   ├── RefreshService (if the refresh TTL is positive)
	│   └── UptimeService
	├── MessagingSupervisor ("messaging-layer")
	│   └── TriggerService (if NATS is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The engine itself is not a service. Its snapshot lives in an atomic pointer
owned by main, so restarting any service never drops the snapshot that
requests are served from.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEngineService(services.NewRefreshService(engine, refreshCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

Suture events (service failures, backoff, restarts) are logged through
sutureslog, which writes to the slog bridge over the global zerolog logger.

# Failure Handling

FailureThreshold failures within the FailureDecay window put a supervisor
into FailureBackoff before it restarts children again. The defaults are
suture's own: 5 failures, 30s decay, 15s backoff. ShutdownTimeout bounds how
long each service has to return after cancellation; services that overrun
it show up in UnstoppedServiceReport.
*/
package supervisor
