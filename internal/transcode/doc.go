// Package transcode runs the end-to-end job pipeline: probe the source,
// decide whether its characteristics already satisfy the target profile, and
// when they do not, supervise an external encode with progress reporting and
// registry-driven cooperative cancellation.
package transcode
