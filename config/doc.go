// Package config loads the diarkit tool configuration.
//
// Configuration comes from a YAML file (diarkit.yml), an optional .env file
// and the environment, in increasing order of precedence. Environment
// variables use the DIARKIT_ prefix with underscore separated paths
// (DIARKIT_HUB_PROVIDER sets hub.provider). PYANNOTE_DATABASE_CONFIG and
// LOG_LEVEL are honored without the prefix.
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile(path))
package config
