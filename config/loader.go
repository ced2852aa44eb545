package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/diarkit/diarkit/backend"
	"github.com/diarkit/diarkit/errors"
)

// EnvPrefix prefixes the environment variables that override configuration.
const EnvPrefix = "DIARKIT_"

// AppName names the configuration files and directories.
const AppName = "diarkit"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	UserConfigDir() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) UserConfigDir() (string, error) {
	return os.UserConfigDir()
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths if provided, otherwise searches
// the standard locations.
func (cr *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.findConfigFile()
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.findEnvFile()
	}
	return resolved
}

// findConfigFile searches ./diarkit.yml, ./config/diarkit.yml and
// <user config dir>/diarkit/config.yml.
func (cr *Resolver) findConfigFile() string {
	searchPaths := []string{
		"./" + AppName + ".yml",
		"./" + AppName + ".yaml",
		"./config/" + AppName + ".yml",
	}
	if dir, err := cr.FileSystem.UserConfigDir(); err == nil && dir != "" {
		searchPaths = append(searchPaths, filepath.Join(dir, AppName, "config.yml"))
	}
	for _, path := range searchPaths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

func (cr *Resolver) findEnvFile() string {
	for _, path := range []string{"./.env." + AppName, "./.env", "./config/.env"} {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path. Unlike discovered
// files, an explicit file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path. Like an explicit config
// file, it must exist.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads, defaults and validates the tool configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(&cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Configuration("--config", "Invalid tool configuration").WithCause(err)
	}
	return &cfg, nil
}

// LoadConfig unmarshals the configuration sources into cfg.
func LoadConfig(cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	for _, explicit := range []string{lc.ConfigFile, lc.EnvFile} {
		if explicit != "" && !lc.FileSystem.Exists(explicit) {
			return errors.PathNotFound(explicit, os.ErrNotExist)
		}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	return loadFromResolvedFiles(cfg, files, lc.FileSystem)
}

func loadFromResolvedFiles(cfg any, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()

	// 1. YAML file
	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return errors.Configuration("--config", "Cannot read "+files.ConfigFile).WithCause(err)
		}
	}

	// 2. .env file, exported into the process environment
	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			return errors.Configuration("--config", "Cannot load "+files.EnvFile).WithCause(err)
		}
	}

	// 3. Environment overrides
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook())); err != nil {
		return errors.Configuration("--config", "Cannot decode tool configuration").WithCause(err)
	}
	return nil
}

// decodeHook extends viper's default hooks: a worker command written as a
// single string is split on white space, a list is kept verbatim.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		commandLineHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var commandLineType = reflect.TypeOf(backend.CommandLine(nil))

func commandLineHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != commandLineType {
		return data, nil
	}
	return backend.ParseCommandLine(data.(string)), nil
}

// bindEnv copies environment overrides into v.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		switch {
		case key == DatabaseConfigEnv:
			v.Set("database.config", value)
		case key == "LOG_LEVEL":
			v.Set("logging.level", value)
		case strings.HasPrefix(key, EnvPrefix):
			name := strings.TrimPrefix(key, EnvPrefix)
			// A bare section name would replace the whole section.
			if !strings.Contains(name, "_") {
				continue
			}
			for _, variant := range generateEnvKeyVariants(name) {
				v.Set(variant, value)
			}
		}
	}
}

// generateEnvKeyVariants creates the nested key candidates for an
// environment variable name.
// Examples:
//
//	HUB_PROVIDER -> [hub_provider, hub.provider]
//	HUB_CACHE_DIR -> [hub_cache_dir, hub.cache.dir, hub.cache_dir]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}
	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
