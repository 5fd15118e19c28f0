// Package config loads, normalizes, and validates Gearboy configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEARBOY_DATA_DIR. The Config type centralizes every knob the CLI needs, so
// the ROM folder, catalog location, and box-art service are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
