package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTarget(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTarget() error {
	if c.Target.MaxHeight != nil && *c.Target.MaxHeight < 0 {
		return errors.New("target.max_height must be >= 0")
	}
	if c.Target.MaxWidth != nil && *c.Target.MaxWidth < 0 {
		return errors.New("target.max_width must be >= 0")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.Quality < 0 {
		return errors.New("encode.quality must be >= 0")
	}
	if c.Encode.VideoRate < 0 {
		return errors.New("encode.video_rate must be >= 0")
	}
	if c.Encode.OutputFormat == "" {
		return errors.New("encode.output_format must be set")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.SettleSeconds < 0 {
		return errors.New("watch.settle_seconds must be >= 0")
	}
	if c.Watch.MaxConcurrent < 1 {
		return errors.New("watch.max_concurrent must be >= 1")
	}
	for _, ext := range c.Watch.Extensions {
		if ext == "" || ext == "." {
			return fmt.Errorf("watch.extensions contains an empty entry")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}
