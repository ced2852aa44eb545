package config

import (
	"fmt"

	"github.com/diarkit/diarkit/backend"
	"github.com/diarkit/diarkit/hub"
	"github.com/diarkit/diarkit/logger"
	"github.com/diarkit/diarkit/validation"
)

// DatabaseConfigEnv is the variable through which the worker finds the
// protocol database registry.
const DatabaseConfigEnv = "PYANNOTE_DATABASE_CONFIG"

// DatabaseConfig locates the protocol database registry.
type DatabaseConfig struct {
	Config string `yaml:"config" mapstructure:"config"`
}

// Config is the tool configuration.
type Config struct {
	Logging  logger.Config  `yaml:"logging" mapstructure:"logging"`
	Hub      hub.Config     `yaml:"hub" mapstructure:"hub"`
	Backend  backend.Config `yaml:"backend" mapstructure:"backend"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	c.Hub.ApplyDefaults()
	c.Backend.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Hub.Config.Validate(); err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	return validation.Validate(c)
}

// BackendConfig returns the backend section with the database registry
// forwarded to the worker.
func (c *Config) BackendConfig() backend.Config {
	bc := c.Backend
	if c.Database.Config != "" {
		bc.Env = append(append([]string(nil), bc.Env...), DatabaseConfigEnv+"="+c.Database.Config)
	}
	return bc
}
