// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

// Package config loads Sparkify configuration with Koanf v2.
//
// Sources are layered defaults, then an optional YAML file, then environment
// variables. The command line only overrides the data root and the connection
// target; everything else lives here.
//
// # Environment Variables
//
//	DUCKDB_PATH          database.path (default data/sparkify.duckdb)
//	DUCKDB_MAX_MEMORY    database.max_memory (default 1GB)
//	DUCKDB_THREADS       database.threads (default 0 = NumCPU)
//	DATABASE_URL         database.postgres_url (selects the PostgreSQL sink)
//	DATA_ROOT            ingest.data_root (default data)
//	SONG_DATA_DIR        ingest.song_dir (default song_data)
//	LOG_DATA_DIR         ingest.log_dir (default log_data)
//	FACT_ERROR_POLICY    ingest.fact_error_policy: continue or abort
//	INGEST_RESUME        ingest.resume
//	PROGRESS_PATH        progress.path (BadgerDB directory)
//	PUSHGATEWAY_URL      metrics.pushgateway_url
//	LOG_LEVEL            logging.level
//	LOG_FORMAT           logging.format
//
// # Example config.yaml
//
//	database:
//	  path: /var/lib/sparkify/sparkify.duckdb
//	  max_memory: 2GB
//	ingest:
//	  data_root: /srv/sparkify/data
//	  fact_error_policy: continue
//	progress:
//	  path: /var/lib/sparkify/progress
package config
