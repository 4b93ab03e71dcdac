package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/probe"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/report"
)

// Config is the top-level configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	IgnoredPaths       []string      `mapstructure:"ignored_paths"`
	SelectedExtensions []string      `mapstructure:"selected_extensions"`
	Threshold          int           `mapstructure:"threshold"`
	ExcludeVendored    bool          `mapstructure:"exclude_vendored"`
	Backend            string        `mapstructure:"backend"`
	Format             string        `mapstructure:"format"`
	Output             string        `mapstructure:"output"`
	Theme              string        `mapstructure:"theme"`
	Logging            LoggingConfig `mapstructure:"logging"`
	Publish            PublishConfig `mapstructure:"publish"`
}

// LoggingConfig controls the diagnostic log.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// PublishConfig configures uploads of the finished report.
type PublishConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidThreshold indicates the threshold is not positive.
	ErrInvalidThreshold = errors.New("threshold must be positive")
	// ErrNoExtensions indicates that no file extension is selected.
	ErrNoExtensions = errors.New("selected_extensions must not be empty")
	// ErrInvalidBackend indicates an unsupported history backend.
	ErrInvalidBackend = errors.New("backend must be one of exec, libgit2, gogit")
	// ErrInvalidFormat indicates an unsupported report format.
	ErrInvalidFormat = errors.New("format must be one of json, html, yaml, text")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, c.Threshold)
	}

	if len(c.SelectedExtensions) == 0 {
		return ErrNoExtensions
	}

	if !slices.Contains(probe.Backends(), c.Backend) {
		return fmt.Errorf("%w: got %q", ErrInvalidBackend, c.Backend)
	}

	_, formatErr := report.ParseFormat(c.Format)
	if formatErr != nil {
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, c.Format)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

// FilterConfig returns the path filter settings. Extensions without a leading
// dot get one.
func (c *Config) FilterConfig() churn.FilterConfig {
	exts := make([]string, len(c.SelectedExtensions))

	for i, ext := range c.SelectedExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		exts[i] = ext
	}

	return churn.FilterConfig{
		IgnoredPaths:    slices.Clone(c.IgnoredPaths),
		Extensions:      exts,
		ExcludeVendored: c.ExcludeVendored,
	}
}
