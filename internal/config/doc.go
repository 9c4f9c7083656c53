// Package config loads, normalizes, and validates video2sub settings.
//
// It supplies built-in defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the VIDEO2SUB_PROXY environment
// fallback. JobOptions merges the file values with command-line overrides so a
// single run receives one explicit, validated options value.
package config
