package store

import (
	"errors"
	"fmt"
	"time"
)

// Provider constants for supported store backends.
const (
	ProviderLocal = "local"
	ProviderHTTP  = "http"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultRegion  = "us-east-1"
	DefaultTimeout = 5 * time.Minute
)

// Config holds store configuration.
type Config struct {
	// Provider selects the backend: "local", "http" or "s3".
	// Empty means no remote store is configured.
	Provider string `mapstructure:"provider" json:"provider" validate:"omitempty,oneof=local http s3"`

	// BasePath is the root directory for the local provider.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	// BaseURL is the URL prefix for the http provider.
	BaseURL string `mapstructure:"base_url" json:"base_url" validate:"omitempty,url"`

	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket" json:"bucket"`

	// Prefix is prepended to every key in the bucket.
	Prefix string `mapstructure:"prefix" json:"prefix"`

	// Region is the AWS region for S3.
	Region string `mapstructure:"region" json:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`

	// AccessKey is the AWS access key ID.
	AccessKey string `mapstructure:"access_key" json:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `mapstructure:"secret_key" json:"-"`

	// ForcePathStyle forces path-style S3 URLs.
	ForcePathStyle bool `mapstructure:"force_path_style" json:"force_path_style"`

	// Timeout bounds a single HTTP download.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Enabled reports whether a remote store is configured.
func (c *Config) Enabled() bool {
	return c.Provider != ""
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case "":
		return nil
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("store: base_path is required for local provider")
		}
	case ProviderHTTP:
		if c.BaseURL == "" {
			return errors.New("store: base_url is required for http provider")
		}
	case ProviderS3:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("store: bucket is required for s3 provider"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("store: region is required for s3 provider"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("store: invalid s3 config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("store: unsupported provider %q", c.Provider)
	}
	return nil
}
