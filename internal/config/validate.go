package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}

	if c.Audit.RegressionThreshold < 0 || c.Audit.RegressionThreshold > 100 {
		return fmt.Errorf("audit.regression_threshold: %v outside [0,100]", c.Audit.RegressionThreshold)
	}

	if c.Rerun.Concurrency < 1 {
		return fmt.Errorf("rerun.concurrency: %d must be at least 1", c.Rerun.Concurrency)
	}

	return nil
}
