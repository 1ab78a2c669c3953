package handbrake

import (
	"slices"
	"strings"
	"testing"
)

func TestArgsAlwaysIncludeJSONAndPaths(t *testing.T) {
	opts := EncodeOptions{Input: "/media/in.mkv", Output: "/media/out.mkv"}
	args := opts.Args()
	want := []string{"--json", "-i", "/media/in.mkv", "-o", "/media/out.mkv"}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args for bare options: %v", args)
	}
}

func TestArgsOnlyEmitSetFields(t *testing.T) {
	opts := EncodeOptions{
		Input:          "/in.mkv",
		Output:         "/out.mkv",
		Preset:         "Fast 1080p30",
		Optimize:       true,
		Encoder:        "x265_10bit",
		EncoderProfile: "main10",
		Quality:        22,
		PeakFrameRate:  true,
		MaxHeight:      1080,
		CombDetect:     "default",
		Decomb:         "bob",
	}
	args := strings.Join(opts.Args(), " ")

	for _, want := range []string{
		"--preset Fast 1080p30",
		"--optimize",
		"--encoder x265_10bit",
		"--encoder-profile main10",
		"--quality 22",
		"--pfr",
		"--maxHeight 1080",
		"--comb-detect",
		"--decomb=bob",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
	for _, unwanted := range []string{"--rate", "--maxWidth", "--deinterlace", "--encopts"} {
		if strings.Contains(args, unwanted) {
			t.Fatalf("args %q should not contain %q", args, unwanted)
		}
	}
	if strings.Contains(args, "--comb-detect=") {
		t.Fatalf("default comb-detect mode should be a bare flag, got %q", args)
	}
}
