package profile

import (
	"context"
	"errors"
	"testing"

	"winnow/internal/config"
	"winnow/internal/logging"
	"winnow/internal/services/handbrake"
)

type fakeExporter struct {
	presets []handbrake.Preset
	err     error
	calls   int
}

func (f *fakeExporter) ExportPreset(_ context.Context, _ string) ([]handbrake.Preset, error) {
	f.calls++
	return f.presets, f.err
}

func TestResolvePresetUsesFirstRecord(t *testing.T) {
	exporter := &fakeExporter{presets: []handbrake.Preset{
		{Name: "HQ", FileFormat: "av_mkv", VideoEncoder: "x265_10bit", VideoProfile: "main10", PictureHeight: 1080, PictureWidth: 1920},
		{Name: "Other", FileFormat: "av_mp4"},
	}}

	resolved := ResolvePreset(context.Background(), exporter, "HQ", logging.NewNop())
	if resolved.Format != "av_mkv" || resolved.VideoCodec != "x265_10bit" {
		t.Fatalf("unexpected profile: %+v", resolved)
	}
	if resolved.MaxHeight == nil || *resolved.MaxHeight != 1080 {
		t.Fatalf("unexpected max height: %v", resolved.MaxHeight)
	}
}

func TestFromPresetTreatsZeroDimensionsAsUnset(t *testing.T) {
	resolved := FromPreset(handbrake.Preset{FileFormat: "av_mkv"})
	if resolved.MaxHeight != nil || resolved.MaxWidth != nil {
		t.Fatalf("zero preset dimensions should be unset, got %+v", resolved)
	}
}

func TestResolvePresetDegradesOnError(t *testing.T) {
	exporter := &fakeExporter{err: errors.New("exit status 1")}
	resolved := ResolvePreset(context.Background(), exporter, "HQ", logging.NewNop())
	if !resolved.IsZero() {
		t.Fatalf("expected empty profile on export failure, got %+v", resolved)
	}
}

func TestResolvePresetDegradesOnEmptyList(t *testing.T) {
	exporter := &fakeExporter{}
	resolved := ResolvePreset(context.Background(), exporter, "HQ", logging.NewNop())
	if !resolved.IsZero() {
		t.Fatalf("expected empty profile for empty preset list, got %+v", resolved)
	}
}

func TestResolvePresetSkipsExportWithoutName(t *testing.T) {
	exporter := &fakeExporter{}
	resolved := ResolvePreset(context.Background(), exporter, "  ", logging.NewNop())
	if !resolved.IsZero() {
		t.Fatalf("expected empty profile, got %+v", resolved)
	}
	if exporter.calls != 0 {
		t.Fatalf("export should not run without a preset name")
	}
}

func TestFromConfig(t *testing.T) {
	height := 720
	target := config.Target{Format: " mp4,mkv ", VideoCodec: "x264", MaxHeight: &height}
	resolved := FromConfig(target)
	if resolved.Format != "mp4,mkv" || resolved.VideoCodec != "x264" {
		t.Fatalf("unexpected profile: %+v", resolved)
	}
	if resolved.MaxHeight == nil || *resolved.MaxHeight != 720 {
		t.Fatalf("unexpected max height: %v", resolved.MaxHeight)
	}
	if resolved.IsZero() {
		t.Fatal("profile with constraints should not be zero")
	}
}
