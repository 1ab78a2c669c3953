package main

import (
	"github.com/spf13/cobra"
)

// shouldSkipConfig reports whether a command opted out of config loading via
// annotation. Commands that create or inspect config files must work before a
// valid config exists.
func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
