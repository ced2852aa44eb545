package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diarkit/diarkit/logger"
)

func init() {
	RegisterFactory(ProviderLocal, func(_ context.Context, cfg Config, _ *logger.Logger) (Store, error) {
		return NewLocal(cfg.BasePath)
	})
}

// Local implements Store on top of a local (or mounted) directory.
type Local struct {
	basePath string
}

// NewLocal creates a store rooted at basePath, which must be a directory.
func NewLocal(basePath string) (*Local, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("store: resolve base path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store: base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: base path %s is not a directory", abs)
	}
	return &Local{basePath: abs}, nil
}

// Open returns a reader for the local file at key.
func (s *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fullPath)
		}
		return nil, fmt.Errorf("store: open file: %w", err)
	}
	return f, nil
}

// Exists checks whether a local file exists at key.
func (s *Local) Exists(_ context.Context, key string) (bool, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("store: stat file: %w", err)
	}
	return !info.IsDir(), nil
}

// Location returns the absolute path of key.
func (s *Local) Location(key string) string {
	return filepath.Join(s.basePath, filepath.Clean("/"+key))
}

// resolve keeps keys inside the base directory.
func (s *Local) resolve(key string) (string, error) {
	fullPath := s.Location(key)
	if fullPath != s.basePath && !strings.HasPrefix(fullPath, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("store: key %q escapes base path", key)
	}
	return fullPath, nil
}

// compile-time check
var _ Store = (*Local)(nil)
