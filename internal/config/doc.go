// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

/*
Package config provides layered configuration for Match Reporter.

Values are resolved from three sources, later ones winning:

 1. Struct defaults (defaultConfig)
 2. A YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml, /etc/matchreporter/config.yaml
 3. Environment variables listed in envMappings

Example config.yaml:

	fogis:
	  base_url: https://fogis.svenskfotboll.se
	  username: reporter
	  password: secret
	sync:
	  interval: 5m
	  days_ahead: 7
	  days_behind: 1
	  max_attempts: 3
	database:
	  path: /data/matchreporter.duckdb
	  checkpoint_interval: 5m   # 0 disables periodic checkpoints
	server:
	  port: 8000

Environment variables (selection):

  - FOGIS_BASE_URL, FOGIS_USERNAME, FOGIS_PASSWORD, FOGIS_REQUEST_TIMEOUT
  - SYNC_INTERVAL, SYNC_BATCH_SIZE, SYNC_MAX_ATTEMPTS, SYNC_CALL_TIMEOUT
  - DUCKDB_PATH, DUCKDB_CHECKPOINT_INTERVAL, HTTP_PORT, ENVIRONMENT
  - CORS_ORIGINS (comma separated), RATE_LIMIT_REQUESTS, DISABLE_RATE_LIMIT
  - LOG_LEVEL, LOG_FORMAT
  - NATS_URL (empty keeps the event bus in-process)
*/
package config
