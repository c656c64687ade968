// Package config loads runtime configuration for the campuslink client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the LMS REST backend
//	-t int      per-request timeout (seconds)
//	-i int      unread-message poll interval (seconds)
//	-d string   path to the local database file
//	-k string   path to the device secret file
//
// # JSON schema
//
// Interval values use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:5000",
//	  "request_timeout": "10s",
//	  "unread_poll_interval": "30s",
//	  "database_path": "campuslink.db",
//	  "device_key_path": "device.key"
//	}
package config
