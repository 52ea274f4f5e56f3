// Package config loads, normalizes, and validates rive2d configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RIVE2D_LIBRARY_DIR. The Config type centralizes every knob the CLI and the
// importer need, so the model library, state database, and log locations are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
