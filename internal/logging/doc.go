// Package logging builds the slog loggers used across winnow and provides
// attribute helpers plus a sampler that keeps per-tick encode progress from
// flooding the log.
package logging
