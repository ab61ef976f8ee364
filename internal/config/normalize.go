package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCanvas()
	c.normalizeEcho()
	c.normalizeMatching()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCanvas() {
	c.Canvas.BaseURL = strings.TrimRight(strings.TrimSpace(c.Canvas.BaseURL), "/")
	c.Canvas.Token = strings.TrimSpace(c.Canvas.Token)
	if c.Canvas.Token == "" {
		if value, ok := os.LookupEnv("CANVAS_TOKEN"); ok {
			c.Canvas.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeEcho() {
	c.Echo.BaseURL = strings.TrimRight(strings.TrimSpace(c.Echo.BaseURL), "/")
	if c.Echo.BaseURL == "" {
		c.Echo.BaseURL = defaultEchoBaseURL
	}
	c.Echo.Token = strings.TrimSpace(c.Echo.Token)
	if c.Echo.Token == "" {
		if value, ok := os.LookupEnv("ECHO360_TOKEN"); ok {
			c.Echo.Token = strings.TrimSpace(value)
		}
	}
	c.Echo.SectionID = strings.TrimSpace(c.Echo.SectionID)
}

func (c *Config) normalizeMatching() {
	if c.Matching.Threshold <= 0 {
		c.Matching.Threshold = defaultThreshold
	}
	if c.Matching.FallbackMin <= 0 {
		c.Matching.FallbackMin = defaultFallbackMin
	}
	if c.Matching.TopK <= 0 {
		c.Matching.TopK = defaultTopK
	}
	if c.Matching.AssignmentMinScore <= 0 {
		c.Matching.AssignmentMinScore = defaultAssignmentMinScore
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
