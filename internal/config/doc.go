// Package config loads taskbridge configuration.
//
// Sources are layered, later ones winning:
//
//	defaults → TOML file (--config) → TASKBRIDGE_* environment → flags
//
// Environment keys map to config keys by stripping the prefix, lower-casing
// and turning "__" into a dot, so TASKBRIDGE_SERVER__READ_ONLY sets
// server.read_only.
package config
