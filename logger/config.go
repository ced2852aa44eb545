package logger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`

	// Components overrides Level per component, e.g. {"hub": "debug"}.
	Components map[string]string `yaml:"components" mapstructure:"components"`
}

// ApplyDefaults fills unset fields. Timestamps are always on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate checks levels, format and output.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatConsole, FormatPretty:
	default:
		return fmt.Errorf("logging.format must be one of [json console pretty] (got: %s)", c.Format)
	}
	switch strings.ToLower(c.Output) {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("logging.output must be one of [stdout stderr] (got: %s)", c.Output)
	}
	names := make([]string, 0, len(c.Components))
	for name := range c.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := parseLevel(c.Components[name]); err != nil {
			return fmt.Errorf("logging.components.%s: %w", name, err)
		}
	}
	return nil
}

// parseLevel accepts zerolog level names other than fatal and panic.
func parseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(s) {
	case "", "fatal", "panic":
		return zerolog.NoLevel, fmt.Errorf("unsupported level %q (want trace, debug, info, warn, error or disabled)", s)
	}
	return zerolog.ParseLevel(strings.ToLower(s))
}

// componentLevels parses Components, dropping invalid entries.
func (c *Config) componentLevels() map[string]zerolog.Level {
	if len(c.Components) == 0 {
		return nil
	}
	levels := make(map[string]zerolog.Level, len(c.Components))
	for name, s := range c.Components {
		if lvl, err := parseLevel(s); err == nil {
			levels[name] = lvl
		}
	}
	return levels
}
