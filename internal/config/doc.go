// Package config loads, normalizes, and validates winnow's TOML
// configuration.
//
// Configuration sections by subsystem:
//   - Paths: output and log directories
//   - Tools: external binary names (HandBrakeCLI, ffprobe)
//   - Target: explicit target-profile overrides for the skip decision
//   - Encode: parameters forwarded to the HandBrake worker
//   - Watch: watch-mode directories and concurrency
//   - Logging: log format and level
package config
