// Package config loads, normalizes, and validates courselens configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CANVAS_TOKEN and ECHO360_TOKEN, with a local .env file picked up when
// present. The Config type centralizes every knob the CLI needs: Canvas and
// Echo360 endpoints, matching thresholds, and data/log directories.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
