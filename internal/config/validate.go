package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Credentials are checked
// separately by RequireCanvas and RequireEcho so offline commands can run
// without them.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold > 100 {
		return errors.New("matching.threshold must be at most 100")
	}
	if c.Matching.FallbackMin > 100 {
		return errors.New("matching.fallback_min must be at most 100")
	}
	if c.Matching.FallbackMin > c.Matching.Threshold {
		return errors.New("matching.fallback_min must not exceed matching.threshold")
	}
	if c.Matching.AssignmentMinScore > 100 {
		return errors.New("matching.assignment_min_score must be at most 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// RequireCanvas checks the settings a Canvas fetch needs.
func (c *Config) RequireCanvas() error {
	if c.Canvas.BaseURL == "" {
		return errors.New("canvas.base_url must be set")
	}
	if c.Canvas.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/courselens/config.toml"
		}
		return fmt.Errorf("canvas.token is required. Set CANVAS_TOKEN env var or edit %s (create with 'courselens config init')", defaultPath)
	}
	if c.Canvas.CourseID <= 0 {
		return errors.New("canvas.course_id must be set")
	}
	return nil
}

// RequireEcho checks the settings an Echo360 fetch needs.
func (c *Config) RequireEcho() error {
	if c.Echo.BaseURL == "" {
		return errors.New("echo360.base_url must be set")
	}
	if c.Echo.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/courselens/config.toml"
		}
		return fmt.Errorf("echo360.token is required. Set ECHO360_TOKEN env var or edit %s (create with 'courselens config init')", defaultPath)
	}
	if c.Echo.SectionID == "" {
		return errors.New("echo360.section_id must be set")
	}
	return nil
}
