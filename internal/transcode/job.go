package transcode

import (
	"path/filepath"
	"strings"

	"winnow/internal/config"
	"winnow/internal/registry"
)

// Job is one unit of transcoding work. DestinationPath is empty until the
// encode completes; skipped jobs never receive one.
type Job struct {
	ID              registry.ID
	SourcePath      string
	DestinationPath string
}

// NewJob mints a job for a source file.
func NewJob(sourcePath string) *Job {
	return &Job{ID: registry.NewID(), SourcePath: sourcePath}
}

// destinationPath derives the output location for a source file: same base
// name, configured output directory, extension swapped for the configured
// output container.
func destinationPath(cfg *config.Config, sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cfg.Encode.OutputFormat)), ".")
	if format == "" {
		format = "mkv"
	}
	return filepath.Join(cfg.Paths.OutputDir, stem+"."+format)
}
