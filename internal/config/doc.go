// Package config loads, normalizes, and validates compaudit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type holds every knob the CLI
// needs: archive and transcript locations, the topic blacklist consumed by
// claim extraction, the regression threshold, rerun concurrency, and log
// settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
