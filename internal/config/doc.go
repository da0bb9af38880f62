// Package config loads, validates, and normalizes photomise
// configuration from TOML, including the registry mapping project names
// to their filesystem paths. All consumers receive an explicit *Config;
// nothing in the repository reads configuration ambiently.
package config
