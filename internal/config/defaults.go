package config

const (
	defaultOutputDir          = "~/.local/share/winnow/encoded"
	defaultLogDir             = "~/.local/share/winnow/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultOutputFormat       = "mkv"
	defaultWatchSettleSeconds = 5
	defaultWatchMaxConcurrent = 1
)

func defaultWatchExtensions() []string {
	return []string{".mkv", ".mp4", ".avi", ".m2ts", ".ts", ".mov", ".wmv"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Encode: Encode{
			OutputFormat: defaultOutputFormat,
		},
		Watch: Watch{
			Extensions:    defaultWatchExtensions(),
			SettleSeconds: defaultWatchSettleSeconds,
			MaxConcurrent: defaultWatchMaxConcurrent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
