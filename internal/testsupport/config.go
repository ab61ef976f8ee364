// Package testsupport provides shared fixtures for courselens tests: temp
// configs and small canonical engagement and gradebook tables.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"courselens/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults working credentials and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Canvas.BaseURL = "https://canvas.test"
	cfg.Canvas.Token = "test-token"
	cfg.Canvas.CourseID = 42
	cfg.Echo.Token = "test-token"
	cfg.Echo.SectionID = "sec-1"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCourseID overrides the Canvas course ID on the test config.
func WithCourseID(id int64) ConfigOption {
	return func(c *config.Config) {
		c.Canvas.CourseID = id
	}
}

// WriteConfig marshals cfg to a TOML file in a temp directory and returns
// its path, for commands that load configuration from disk.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
