// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// The per-instrument page cap lives in a separate small file (see PageCapFile)
// so operators can tune it between cycles without restarting the daemon.
package config
