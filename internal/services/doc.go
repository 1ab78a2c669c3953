// Package services defines the error taxonomy shared by winnow's external
// collaborators (probe, preset export, encoder worker) and the helpers used to
// tag failures with a classification marker.
package services
