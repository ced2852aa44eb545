// Package hub fetches pre-trained model checkpoints by name.
//
// Checkpoints are looked up in a local cache first and downloaded from the
// configured model store otherwise. Fetch never fails loudly: it returns a
// Result carrying either the local path or the cause of the failure.
package hub

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/diarkit/diarkit/logger"
	"github.com/diarkit/diarkit/store"
)

// CheckpointExt is appended to model names to form store keys and cache files.
const CheckpointExt = ".pt"

// ErrNoStore is the cause reported when a model is not cached and no store
// is configured.
var ErrNoStore = stderrors.New("no model hub configured (set hub.provider)")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Config configures the model hub.
type Config struct {
	store.Config `mapstructure:",squash"`

	// CacheDir holds downloaded checkpoints.
	CacheDir string `mapstructure:"cache_dir"`
	// MaxAttempts bounds download attempts for transient failures.
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=0"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
}

// ApplyDefaults applies default values to the hub configuration.
func (c *Config) ApplyDefaults() {
	c.Config.ApplyDefaults()
	if c.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(dir, "diarkit", "hub")
		} else {
			c.CacheDir = filepath.Join(os.TempDir(), "diarkit", "hub")
		}
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
}

// Result is the outcome of a fetch: Path on success, Cause on failure.
type Result struct {
	Path  string
	Cause error
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool { return r.Cause == nil && r.Path != "" }

// Fetcher resolves a model name to a local checkpoint path.
type Fetcher interface {
	Fetch(ctx context.Context, name string) Result
}

// Hub is the default Fetcher.
type Hub struct {
	cfg   Config
	store store.Store
	log   *logger.Logger
}

// New creates a hub. st may be nil, in which case only cached models resolve.
func New(cfg Config, st store.Store, log *logger.Logger) *Hub {
	cfg.ApplyDefaults()
	return &Hub{cfg: cfg, store: st, log: log.WithComponent("hub")}
}

// Fetch returns the local path of the named checkpoint, downloading it
// into the cache when needed.
func (h *Hub) Fetch(ctx context.Context, name string) Result {
	if !namePattern.MatchString(name) || strings.Trim(name, ".") == "" {
		return Result{Cause: fmt.Errorf("invalid model name %q", name)}
	}
	key := name
	if !strings.HasSuffix(key, CheckpointExt) {
		key += CheckpointExt
	}
	cached := filepath.Join(h.cfg.CacheDir, key)
	log := h.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldModel, name))

	if info, err := os.Stat(cached); err == nil && info.Mode().IsRegular() {
		log.Debug("using cached model", logger.Fields(logger.FieldPath, cached))
		return Result{Path: cached}
	}

	if h.store == nil {
		return Result{Cause: ErrNoStore}
	}
	// A failed lookup is left to the download, which retries.
	if ok, err := h.store.Exists(ctx, key); err == nil && !ok {
		return Result{Cause: fmt.Errorf("%w: %s", store.ErrNotFound, h.store.Location(key))}
	}

	start := time.Now()
	err := retry(ctx, retryConfig{
		MaxAttempts:    h.cfg.MaxAttempts,
		InitialBackoff: h.cfg.InitialBackoff,
		Jitter:         0.1,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Warn("model download failed, retrying", logger.Fields(
				"attempt", attempt, logger.FieldError, err.Error(), "backoff", backoff.String()))
		},
	}, func() error {
		return h.download(ctx, key, cached)
	})
	if err != nil {
		log.Debug("model download failed", logger.Failure("download", err))
		return Result{Cause: err}
	}

	log.Info("downloaded model", logger.Elapsed("download", time.Since(start)))
	return Result{Path: cached}
}

// download copies key from the store into dst atomically.
func (h *Hub) download(ctx context.Context, key, dst string) (err error) {
	rc, err := h.store.Open(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.part")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, rc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("download: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("store cache file: %w", err)
	}
	return nil
}
