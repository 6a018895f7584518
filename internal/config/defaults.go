package config

const (
	defaultArchiveDir          = "~/.local/share/compaudit/context_archive"
	defaultTranscriptsBase     = "~/.claude/projects"
	defaultRegressionThreshold = 5.0
	defaultRerunConcurrency    = 4
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveDir:      defaultArchiveDir,
			TranscriptsBase: defaultTranscriptsBase,
		},
		Audit: Audit{
			RegressionThreshold: defaultRegressionThreshold,
		},
		Rerun: Rerun{
			Concurrency: defaultRerunConcurrency,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
