// Package profile resolves the target encoding profile a source file is
// compared against. Two sources exist: a named HandBrake preset (resolved via
// preset export) and explicit configuration overrides; the decision engine
// gives the explicit side precedence per concern.
package profile

import (
	"context"
	"log/slog"
	"strings"

	"winnow/internal/config"
	"winnow/internal/logging"
	"winnow/internal/services/handbrake"
)

// TargetProfile describes the desired output characteristics. Every field is
// optional; the zero value carries no constraints at all.
type TargetProfile struct {
	// Format is a container constraint. From a preset this is a HandBrake
	// muxer token such as "av_mkv"; from configuration it may be a
	// comma-separated list of short names such as "mp4,mkv".
	Format string
	// VideoCodec is a desired encoder name, possibly carrying a bit-depth
	// tag ("x265_10bit").
	VideoCodec string
	// VideoProfile is the desired codec profile ("high", "main10").
	VideoProfile string
	// MaxHeight and MaxWidth cap the picture dimensions. nil means unset; a
	// pointer to 0 is the "always re-encode" sentinel the decision engine
	// treats as never satisfiable.
	MaxHeight *int
	MaxWidth  *int
}

// IsZero reports whether no field carries a constraint.
func (p TargetProfile) IsZero() bool {
	return p.Format == "" && p.VideoCodec == "" && p.VideoProfile == "" && p.MaxHeight == nil && p.MaxWidth == nil
}

// FromPreset maps a HandBrake preset record onto a TargetProfile. HandBrake
// uses picture dimension 0 to mean "no limit", so a zero dimension maps to an
// unset constraint rather than the explicit-zero sentinel.
func FromPreset(preset handbrake.Preset) TargetProfile {
	return TargetProfile{
		Format:       strings.TrimSpace(preset.FileFormat),
		VideoCodec:   strings.TrimSpace(preset.VideoEncoder),
		VideoProfile: strings.TrimSpace(preset.VideoProfile),
		MaxHeight:    positiveDimension(preset.PictureHeight),
		MaxWidth:     positiveDimension(preset.PictureWidth),
	}
}

func positiveDimension(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}

// FromConfig maps the explicit target overrides onto a TargetProfile.
func FromConfig(target config.Target) TargetProfile {
	return TargetProfile{
		Format:       strings.TrimSpace(target.Format),
		VideoCodec:   strings.TrimSpace(target.VideoCodec),
		VideoProfile: strings.TrimSpace(target.VideoProfile),
		MaxHeight:    target.MaxHeight,
		MaxWidth:     target.MaxWidth,
	}
}

// ResolvePreset resolves a named preset into its profile. Only the first
// preset in the export result is used. Any failure (tool error, malformed
// output, empty list) is logged and degrades to an empty profile; an
// unresolved preset means "no preset-derived constraints", never a fatal
// error.
func ResolvePreset(ctx context.Context, exporter handbrake.PresetExporter, name string, logger *slog.Logger) TargetProfile {
	if logger == nil {
		logger = logging.NewNop()
	}
	name = strings.TrimSpace(name)
	if name == "" || exporter == nil {
		return TargetProfile{}
	}

	presets, err := exporter.ExportPreset(ctx, name)
	if err != nil {
		logger.Warn("preset resolution failed, continuing without preset constraints",
			logging.String("preset", name), logging.Error(err))
		return TargetProfile{}
	}
	if len(presets) == 0 {
		logger.Warn("preset export returned no presets",
			logging.String("preset", name))
		return TargetProfile{}
	}

	resolved := FromPreset(presets[0])
	logger.Info("resolved target preset",
		logging.String("preset", name),
		logging.String("format", resolved.Format),
		logging.String("video_codec", resolved.VideoCodec),
		logging.String("video_profile", resolved.VideoProfile),
		logging.Int("max_height", dimensionValue(resolved.MaxHeight)),
		logging.Int("max_width", dimensionValue(resolved.MaxWidth)))
	return resolved
}

func dimensionValue(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
