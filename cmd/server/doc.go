// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package main is the entry point for the matchreporter binary.

Match Reporter records soccer match events captured by a voice front end
and synchronizes them with FOGIS, the Swedish football match-management
system. Events are always stored locally first; a background coordinator
pushes them upstream and imports the match schedule.

# Commands

	matchreporter [serve]          run the supervised service (default)
	matchreporter sync-once        run one sync cycle and print its report
	matchreporter version          print build information

The persistent --config flag points at a YAML file and takes precedence
over CONFIG_PATH.

# Application Architecture

	RootSupervisor ("matchreporter")
	├── DataSupervisor ("data-layer")
	│   └── Checkpoint service (database.checkpoint_interval > 0)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Sync coordinator (fogis.enabled and sync.enabled)
	│   └── Outcome logger (eventbus.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB
 4. FOGIS client: rate limited HTTP client behind a circuit breaker
 5. Event bus: Watermill over GoChannel or NATS
 6. Sync coordinator
 7. Supervisor tree and HTTP server

# Configuration

Core environment variables:

	HTTP_PORT=8000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	DUCKDB_PATH=/data/matchreporter.duckdb

	FOGIS_ENABLED=true
	FOGIS_BASE_URL=https://fogis.svenskfotboll.se
	FOGIS_USERNAME=<username>
	FOGIS_PASSWORD=<password>

	SYNC_ENABLED=true
	SYNC_INTERVAL=5m

	EVENTBUS_ENABLED=true
	NATS_URL=                    # empty selects the in-process transport

See internal/config for the complete reference.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
server.shutdown_timeout, the coordinator finishes its in-flight push, and the
event bus and database are closed after the tree has stopped. Services that
failed to stop are reported.

# Exit Codes

sync-once exits 1 when the cycle could not run at all (configuration,
authentication, or listing pending events). A cycle whose pull or individual
events failed still exits 0; the printed report lists those failures.
*/
package main
