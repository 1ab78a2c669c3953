package handbrake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Preset is one record from HandBrake's preset store, restricted to the
// fields that feed the target profile.
type Preset struct {
	Name          string `json:"PresetName"`
	FileFormat    string `json:"FileFormat"`
	VideoEncoder  string `json:"VideoEncoder"`
	VideoProfile  string `json:"VideoProfile"`
	PictureHeight int    `json:"PictureHeight"`
	PictureWidth  int    `json:"PictureWidth"`
}

// PresetExporter resolves a named preset via HandBrake's preset-export
// facility.
type PresetExporter interface {
	ExportPreset(ctx context.Context, name string) ([]Preset, error)
}

type presetList struct {
	PresetList []Preset `json:"PresetList"`
}

// ExportPreset runs HandBrakeCLI --preset-export and parses the resulting
// preset list.
func (c *CLI) ExportPreset(ctx context.Context, name string) ([]Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("preset name required")
	}

	cmd := commandContext(ctx, c.binary, "--preset-export", name) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("preset export: %w", err)
	}

	return parsePresetExport(output)
}

// parsePresetExport decodes preset-export output. The CLI may prefix the JSON
// document with version banners, so decoding starts at the first brace.
func parsePresetExport(output []byte) ([]Preset, error) {
	start := strings.Index(string(output), "{")
	if start < 0 {
		return nil, errors.New("preset export: no JSON document in output")
	}

	var list presetList
	if err := json.Unmarshal(output[start:], &list); err != nil {
		return nil, fmt.Errorf("preset export parse: %w", err)
	}
	return list.PresetList, nil
}

var _ PresetExporter = (*CLI)(nil)
