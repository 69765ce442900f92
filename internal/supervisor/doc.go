// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package supervisor runs the long-lived services of Match Reporter under a
suture v4 supervisor tree.

	RootSupervisor ("matchreporter")
	├── DataSupervisor ("data-layer")
	│   └── CheckpointService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── SyncService (sync coordinator loop)
	│   └── OutcomeLoggerService (event bus audit trail)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer restarts its own services with backoff, so a crashing sync loop
does not take the HTTP API down with it. Supervisor events (start, stop,
failure, backoff) are logged through sutureslog into the zerolog pipeline.

Shutdown is driven by context cancellation: Serve returns once every service
has stopped or ShutdownTimeout elapsed. UnstoppedServiceReport lists the
services that did not stop in time.
*/
package supervisor
