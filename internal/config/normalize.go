package config

import (
	"path/filepath"
	"strings"
)

// normalize expands paths and fills in derived defaults.
func (c *Config) normalize() error {
	var err error
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return err
	}
	if c.Paths.TranscriptsBase, err = expandPath(c.Paths.TranscriptsBase); err != nil {
		return err
	}

	if strings.TrimSpace(c.Paths.ReportsDir) == "" {
		c.Paths.ReportsDir = filepath.Join(c.Paths.ArchiveDir, "compaction_reports")
	} else if c.Paths.ReportsDir, err = expandPath(c.Paths.ReportsDir); err != nil {
		return err
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	if c.Rerun.Concurrency <= 0 {
		c.Rerun.Concurrency = defaultRerunConcurrency
	}

	blacklist := c.Audit.TopicBlacklist[:0]
	for _, term := range c.Audit.TopicBlacklist {
		if trimmed := strings.TrimSpace(term); trimmed != "" {
			blacklist = append(blacklist, trimmed)
		}
	}
	c.Audit.TopicBlacklist = blacklist

	return nil
}
