// Package decision answers whether a probed source file already complies
// with the resolved target profile, making a re-encode unnecessary.
package decision

import (
	"strings"

	"winnow/internal/profile"
)

// Source carries the probed characteristics the engine consults.
type Source struct {
	// Format is the ffprobe container name, possibly a comma-separated
	// alias list ("matroska,webm").
	Format string
	// Codec, Profile, Height, Width describe the first video stream.
	Codec   string
	Profile string
	Height  int
	Width   int
}

// ShouldSkip reports whether the source already satisfies every constraint
// that is set on either profile. Explicit overrides shadow the preset per
// concern. With no constraints set at all the verdict defaults to skip:
// absent any opinion about compliance, no work is needed. Every set
// constraint is ANDed into the verdict; one failing check can never be undone
// by a later passing one.
func ShouldSkip(src Source, preset, override profile.TargetProfile) bool {
	skip := true

	if format := firstSet(override.Format, preset.Format); format != "" {
		skip = skip && containerCompliant(src.Format, format)
	}
	if codec := firstSet(override.VideoCodec, preset.VideoCodec); codec != "" {
		skip = skip && codecCompliant(src.Codec, codec)
	}
	if prof := firstSet(override.VideoProfile, preset.VideoProfile); prof != "" {
		skip = skip && profileCompliant(src.Profile, prof)
	}
	if max := firstSetDimension(override.MaxHeight, preset.MaxHeight); max != nil {
		skip = skip && dimensionCompliant(src.Height, *max)
	}
	if max := firstSetDimension(override.MaxWidth, preset.MaxWidth); max != nil {
		skip = skip && dimensionCompliant(src.Width, *max)
	}

	return skip
}

func firstSet(override, preset string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return preset
}

func firstSetDimension(override, preset *int) *int {
	if override != nil {
		return override
	}
	return preset
}

// ffprobe reports muxer alias lists rather than the short names users (and
// HandBrake) speak; map the known ones onto their short form.
var containerAliases = map[string]string{
	"matroska": "mkv",
	"mov":      "mp4",
	"m4a":      "mp4",
	"m4v":      "mp4",
	"3gp":      "mp4",
	"3g2":      "mp4",
	"mj2":      "mp4",
	"mpegts":   "ts",
}

// containerCompliant checks the probed container against the desired value.
// Desired may be a comma-separated list of acceptable short names and may use
// HandBrake muxer tokens ("av_mkv"), which carry the short name as the
// second `_`-separated segment.
func containerCompliant(probed, desired string) bool {
	acceptable := map[string]struct{}{}
	for _, token := range strings.Split(desired, ",") {
		if name := normalizeContainer(token); name != "" {
			acceptable[name] = struct{}{}
		}
	}
	if len(acceptable) == 0 {
		return false
	}
	for _, token := range strings.Split(probed, ",") {
		if _, ok := acceptable[normalizeContainer(token)]; ok {
			return true
		}
	}
	return false
}

func normalizeContainer(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if parts := strings.SplitN(token, "_", 2); len(parts) == 2 {
		token = parts[1]
	}
	if alias, ok := containerAliases[token]; ok {
		return alias
	}
	return token
}

// Desired codecs arrive as HandBrake encoder names; compare against the codec
// family the encoder produces.
var encoderFamilies = map[string]string{
	"x264":       "h264",
	"nvenc_h264": "h264",
	"qsv_h264":   "h264",
	"vce_h264":   "h264",
	"vt_h264":    "h264",
	"x265":       "hevc",
	"nvenc_h265": "hevc",
	"qsv_h265":   "hevc",
	"vce_h265":   "hevc",
	"vt_h265":    "hevc",
	"svt_av1":    "av1",
	"qsv_av1":    "av1",
	"nvenc_av1":  "av1",
	"mpeg2":      "mpeg2video",
	"mpeg4":      "mpeg4",
	"vp8":        "vp8",
	"vp9":        "vp9",
	"theora":     "theora",
}

// codecCompliant compares the probed codec name against the desired encoder.
// A `_`-suffixed bit-depth tag on the desired value ("x265_10bit") is
// stripped before comparison.
func codecCompliant(probed, desired string) bool {
	probed = strings.ToLower(strings.TrimSpace(probed))
	desired = stripDepthTag(strings.ToLower(strings.TrimSpace(desired)))
	if family, ok := encoderFamilies[desired]; ok {
		desired = family
	}
	return probed != "" && probed == desired
}

func stripDepthTag(name string) string {
	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return name
	}
	suffix := name[idx+1:]
	if strings.HasSuffix(suffix, "bit") && len(suffix) > 3 {
		digits := suffix[:len(suffix)-3]
		for _, r := range digits {
			if r < '0' || r > '9' {
				return name
			}
		}
		return name[:idx]
	}
	return name
}

func profileCompliant(probed, desired string) bool {
	return strings.EqualFold(strings.TrimSpace(probed), strings.TrimSpace(desired))
}

// dimensionCompliant applies the max-dimension cap. A maximum of exactly zero
// is the "always re-encode" sentinel and is never satisfiable.
func dimensionCompliant(probed, max int) bool {
	if max == 0 {
		return false
	}
	return probed <= max
}
