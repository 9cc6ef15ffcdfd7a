// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

/*
Package supervisor runs Sillage's long-lived services under suture v4.

The tree has three layers so that a crash in one does not restart the
others:

	RootSupervisor ("sillage")
	├── DataSupervisor ("data-layer")
	│   ├── CacheSweeperService
	│   └── RebuildService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── tracking.Tracker (view workers)
	│   └── events.Router (if events.backend is memory or nats)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A failing service is restarted with backoff. After FailureThreshold
failures (decaying over FailureDecay seconds) its supervisor pauses for
FailureBackoff. Supervisor events go through sutureslog to zerolog:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCacheSweeperService(engine.Cache(), time.Minute, log))
	tree.AddAPIService(services.NewHTTPServerService(srv, 15*time.Second))
	err = tree.Serve(ctx)

Serve returns when ctx is canceled. Services that do not stop within
ShutdownTimeout are listed by UnstoppedServiceReport.
*/
package supervisor
