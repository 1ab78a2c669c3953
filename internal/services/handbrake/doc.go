// Package handbrake drives the HandBrakeCLI encoder.
//
// It exposes two collaborator surfaces: PresetExporter resolves named presets
// from HandBrake's preset store, and Client launches an encode and supervises
// it through a channel of tagged events (progress, complete, error) with
// cooperative cancellation.
package handbrake
