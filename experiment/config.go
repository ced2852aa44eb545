package experiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/diarkit/diarkit/errors"
)

// Section is a named component with free-form parameters.
type Section struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// Config is the content of <root>/config.yml.
type Config struct {
	Task              Section            `yaml:"task"`
	FeatureExtraction Section            `yaml:"feature_extraction"`
	DataAugmentation  Section            `yaml:"data_augmentation"`
	Architecture      Section            `yaml:"architecture"`
	Scheduler         Section            `yaml:"scheduler"`
	Preprocessors     map[string]Section `yaml:"preprocessors"`
	Callbacks         []Section          `yaml:"callbacks"`
}

// LoadConfig reads <root>/config.yml.
func LoadConfig(root string) (*Config, error) {
	return loadYAML[Config](filepath.Join(root, ConfigFile))
}

// Duration returns task.params.duration, the chunk duration used in training.
func (c *Config) Duration() (float64, bool) {
	v, ok := c.Task.Params["duration"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, n > 0
	case uint64:
		return float64(n), n > 0
	case int64:
		return float64(n), n > 0
	case int:
		return float64(n), n > 0
	default:
		return 0, false
	}
}

// Metric returns task.params.metric, the embedding comparison metric.
func (c *Config) Metric() (string, bool) {
	v, ok := c.Task.Params["metric"].(string)
	return v, ok && v != ""
}

// Params is the content of <validate>/params.yml, written by validation.
type Params struct {
	Epoch  *int           `yaml:"epoch"`
	Params map[string]any `yaml:"params,omitempty"`
}

// LoadParams reads <validate>/params.yml. The best epoch is required.
func LoadParams(validate string) (*Params, error) {
	path := filepath.Join(validate, ParamsFile)
	p, err := loadYAML[Params](path)
	if err != nil {
		return nil, err
	}
	if p.Epoch == nil {
		return nil, errors.Configuration("epoch", fmt.Sprintf("%s does not define the best 'epoch'", path))
	}
	return p, nil
}

func loadYAML[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.PathNotFound(path, err)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, errors.Configuration(filepath.Base(path), "Cannot parse "+path).WithCause(err)
	}
	return &v, nil
}
