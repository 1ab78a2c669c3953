package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Tools names the external binaries winnow shells out to.
type Tools struct {
	HandBrake string `toml:"handbrake"`
	FFprobe   string `toml:"ffprobe"`
}

// Target holds the explicit per-job target profile overrides. Every field is
// optional; an empty value means "no constraint from configuration" and the
// preset-derived value (if any) applies instead.
type Target struct {
	// Format is a comma-separated list of acceptable container short names,
	// e.g. "mp4,mkv".
	Format       string `toml:"format"`
	VideoCodec   string `toml:"video_codec"`
	VideoProfile string `toml:"video_profile"`
	// MaxHeight/MaxWidth are pointers so an absent key and an explicit 0 can
	// be told apart: 0 is the "always re-encode" sentinel.
	MaxHeight *int `toml:"max_height"`
	MaxWidth  *int `toml:"max_width"`
}

// Encode holds the parameters forwarded to HandBrakeCLI. Only fields that are
// explicitly set are passed on the worker command line.
type Encode struct {
	Preset         string `toml:"preset"`
	Optimize       bool   `toml:"optimize"`
	Encoder        string `toml:"encoder"`
	EncoderOptions string `toml:"encoder_options"`
	EncoderProfile string `toml:"encoder_profile"`
	Quality        int    `toml:"quality"`
	VideoRate      int    `toml:"video_rate"`
	PeakFrameRate  bool   `toml:"peak_frame_rate"`
	CombDetect     string `toml:"comb_detect"`
	Deinterlace    string `toml:"deinterlace"`
	Decomb         string `toml:"decomb"`
	OutputFormat   string `toml:"output_format"`
}

// Watch contains configuration for watch mode.
type Watch struct {
	Dirs          []string `toml:"dirs"`
	Extensions    []string `toml:"extensions"`
	SettleSeconds int      `toml:"settle_seconds"`
	MaxConcurrent int      `toml:"max_concurrent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for winnow.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Target  Target  `toml:"target"`
	Encode  Encode  `toml:"encode"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/winnow/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("winnow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.OutputDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	for i, dir := range c.Watch.Dirs {
		expanded, err := expandPath(dir)
		if err != nil {
			return err
		}
		c.Watch.Dirs[i] = expanded
	}
	for i, ext := range c.Watch.Extensions {
		cleaned := strings.ToLower(strings.TrimSpace(ext))
		if cleaned != "" && !strings.HasPrefix(cleaned, ".") {
			cleaned = "." + cleaned
		}
		c.Watch.Extensions[i] = cleaned
	}
	c.Tools.HandBrake = strings.TrimSpace(c.Tools.HandBrake)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Encode.OutputFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Encode.OutputFormat)), ".")
	return nil
}

// EnsureDirectories creates required directories for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HandBrakeBinary returns the HandBrakeCLI executable name.
func (c *Config) HandBrakeBinary() string {
	if c == nil || c.Tools.HandBrake == "" {
		return "HandBrakeCLI"
	}
	return c.Tools.HandBrake
}

// FFprobeBinary returns the ffprobe executable name.
func (c *Config) FFprobeBinary() string {
	if c == nil || c.Tools.FFprobe == "" {
		return "ffprobe"
	}
	return c.Tools.FFprobe
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
