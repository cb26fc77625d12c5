// Package config provides configuration types, YAML loading with
// environment variable substitution, validation, and hot reload via
// file watching.
//
// Configuration files are YAML. ${VAR} and ${VAR:-default} references
// are substituted from the environment before parsing, and "$$"
// escapes a literal dollar sign. Durations are human-readable strings
// such as "30s" or "5m".
package config
