package handbrake

import (
	"strconv"
	"strings"
)

// EncodeOptions is the flattened set of parameters passed to HandBrakeCLI.
// Input and Output are required; every other field is optional and only
// emitted on the command line when explicitly set.
type EncodeOptions struct {
	Input  string
	Output string

	Preset         string
	Optimize       bool
	Encoder        string
	EncoderOptions string
	EncoderProfile string
	Quality        int
	VideoRate      int
	PeakFrameRate  bool
	MaxHeight      int
	MaxWidth       int
	CombDetect     string
	Deinterlace    string
	Decomb         string
}

// Args renders the options as HandBrakeCLI arguments. --json is always passed
// so progress can be supervised from stdout.
func (o EncodeOptions) Args() []string {
	args := []string{"--json", "-i", o.Input, "-o", o.Output}
	if v := strings.TrimSpace(o.Preset); v != "" {
		args = append(args, "--preset", v)
	}
	if o.Optimize {
		args = append(args, "--optimize")
	}
	if v := strings.TrimSpace(o.Encoder); v != "" {
		args = append(args, "--encoder", v)
	}
	if v := strings.TrimSpace(o.EncoderOptions); v != "" {
		args = append(args, "--encopts", v)
	}
	if v := strings.TrimSpace(o.EncoderProfile); v != "" {
		args = append(args, "--encoder-profile", v)
	}
	if o.Quality > 0 {
		args = append(args, "--quality", strconv.Itoa(o.Quality))
	}
	if o.VideoRate > 0 {
		args = append(args, "--rate", strconv.Itoa(o.VideoRate))
	}
	if o.PeakFrameRate {
		args = append(args, "--pfr")
	}
	if o.MaxHeight > 0 {
		args = append(args, "--maxHeight", strconv.Itoa(o.MaxHeight))
	}
	if o.MaxWidth > 0 {
		args = append(args, "--maxWidth", strconv.Itoa(o.MaxWidth))
	}
	args = appendModeFlag(args, "--comb-detect", o.CombDetect)
	args = appendModeFlag(args, "--deinterlace", o.Deinterlace)
	args = appendModeFlag(args, "--decomb", o.Decomb)
	return args
}

// appendModeFlag emits filter flags that take an optional mode. The literal
// mode "default" selects HandBrake's built-in default by passing the bare flag.
func appendModeFlag(args []string, flag, mode string) []string {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return args
	}
	if strings.EqualFold(mode, "default") {
		return append(args, flag)
	}
	return append(args, flag+"="+mode)
}
