// Package config loads softportal settings.
//
// Settings come from a TOML or YAML file, chosen by extension, followed by
// SOFTPORTAL_* environment overrides. A .env file may supply those
// variables; values already present in the environment win.
//
// Example config.toml:
//
//	[portal]
//	slots = 4
//	poll_interval = "100ms"
//
//	[transport]
//	bus_dir = "/tmp/softportal"
//
//	[storage]
//	driver = "sqlite"
//	path = "/var/lib/softportal/toys.db"
//
//	[admin]
//	enabled = true
//	addr = "127.0.0.1:8370"
package config
