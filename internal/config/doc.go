// Package config loads runtime configuration for the tripkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment variables prefixed with TRIPKEEPER_. A .env file in the
//     working directory is loaded first; variables already set win over it.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   path of the SQLite database file
//	-m string   manifest API base URL
//	-s int      background sync interval (seconds)
//	-i int      online status check interval (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "db_path": "tripkeeper.db",
//	  "manifest_url": "https://erp.example.com/api",
//	  "manifest_token": "secret",
//	  "manifest_timeout": "15s",
//	  "trips_url": "https://script.example.com/trips",
//	  "fuel_url": "https://script.example.com/fuel",
//	  "ingest_timeout": "30s",
//	  "sync_interval": "30s",
//	  "s3": {"bucket": "receipts", "base_endpoint": "http://127.0.0.1:9000"}
//	}
package config
