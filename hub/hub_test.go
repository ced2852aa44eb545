package hub

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diarkit/diarkit/logger"
	"github.com/diarkit/diarkit/store"
)

type flakyStore struct {
	failures  int
	err       error
	missing   bool
	lookupErr error
	calls     atomic.Int32
}

func (s *flakyStore) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	n := int(s.calls.Add(1))
	if n <= s.failures {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader("weights")), nil
}

func (s *flakyStore) Exists(context.Context, string) (bool, error) {
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return !s.missing, nil
}

func (s *flakyStore) Location(key string) string { return "flaky://" + key }

func newTestHub(t *testing.T, st store.Store) *Hub {
	t.Helper()
	return New(Config{CacheDir: t.TempDir(), InitialBackoff: time.Millisecond}, st, logger.NewNop())
}

func TestFetch_LocalStore(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "sad_ami.pt"), []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := store.NewLocal(src)
	if err != nil {
		t.Fatal(err)
	}
	h := newTestHub(t, st)

	res := h.Fetch(context.Background(), "sad_ami")
	if !res.OK() {
		t.Fatalf("Fetch failed: %v", res.Cause)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil || string(data) != "weights" {
		t.Fatalf("cached file = %q, %v", data, err)
	}
	if filepath.Dir(res.Path) != h.cfg.CacheDir {
		t.Errorf("Path = %s, want inside %s", res.Path, h.cfg.CacheDir)
	}
}

func TestFetch_UsesCache(t *testing.T) {
	st := &flakyStore{}
	h := newTestHub(t, st)
	if err := os.WriteFile(filepath.Join(h.cfg.CacheDir, "emb_voxceleb.pt"), []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := h.Fetch(context.Background(), "emb_voxceleb")
	if !res.OK() {
		t.Fatalf("Fetch failed: %v", res.Cause)
	}
	if st.calls.Load() != 0 {
		t.Errorf("store called %d times, want 0", st.calls.Load())
	}
}

func TestFetch_HTTPStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/scd_ami.pt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote weights"))
	}))
	defer srv.Close()

	st, err := store.NewHTTP(srv.URL+"/models", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	h := newTestHub(t, st)

	res := h.Fetch(context.Background(), "scd_ami")
	if !res.OK() {
		t.Fatalf("Fetch failed: %v", res.Cause)
	}

	res = h.Fetch(context.Background(), "unknown")
	if res.OK() || !stderrors.Is(res.Cause, store.ErrNotFound) {
		t.Fatalf("Fetch(unknown) = %+v, want ErrNotFound", res)
	}
}

func TestFetch_RetriesTransientErrors(t *testing.T) {
	st := &flakyStore{failures: 2, err: &store.StatusError{URL: "x", StatusCode: http.StatusServiceUnavailable}}
	h := newTestHub(t, st)

	res := h.Fetch(context.Background(), "ovl_ami")
	if !res.OK() {
		t.Fatalf("Fetch failed: %v", res.Cause)
	}
	if got := st.calls.Load(); got != 3 {
		t.Errorf("store calls = %d, want 3", got)
	}
}

func TestFetch_DoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", store.ErrNotFound},
		{"forbidden", &store.StatusError{URL: "x", StatusCode: http.StatusForbidden}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &flakyStore{failures: 10, err: tt.err}
			h := newTestHub(t, st)
			res := h.Fetch(context.Background(), "model")
			if res.OK() {
				t.Fatal("expected failure")
			}
			if !stderrors.Is(res.Cause, tt.err) {
				t.Errorf("Cause = %v, want %v", res.Cause, tt.err)
			}
			if got := st.calls.Load(); got != 1 {
				t.Errorf("store calls = %d, want 1", got)
			}
		})
	}
}

func TestFetch_MissingModelSkipsDownload(t *testing.T) {
	st := &flakyStore{missing: true}
	h := newTestHub(t, st)

	res := h.Fetch(context.Background(), "model")
	if res.OK() || !stderrors.Is(res.Cause, store.ErrNotFound) {
		t.Fatalf("Result = %+v, want ErrNotFound", res)
	}
	if !strings.Contains(res.Cause.Error(), "flaky://model.pt") {
		t.Errorf("Cause = %v, want store location", res.Cause)
	}
	if got := st.calls.Load(); got != 0 {
		t.Errorf("store downloads = %d, want 0", got)
	}
}

func TestFetch_LookupErrorFallsBackToDownload(t *testing.T) {
	st := &flakyStore{lookupErr: stderrors.New("HEAD not allowed")}
	h := newTestHub(t, st)

	if res := h.Fetch(context.Background(), "model"); !res.OK() {
		t.Fatalf("Fetch failed: %v", res.Cause)
	}
	if got := st.calls.Load(); got != 1 {
		t.Errorf("store downloads = %d, want 1", got)
	}
}

func TestFetch_GivesUpAfterMaxAttempts(t *testing.T) {
	st := &flakyStore{failures: 10, err: stderrors.New("connection reset by peer")}
	h := newTestHub(t, st)

	res := h.Fetch(context.Background(), "model")
	if res.OK() || !strings.Contains(res.Cause.Error(), "connection reset") {
		t.Fatalf("Result = %+v", res)
	}
	if got := st.calls.Load(); got != 3 {
		t.Errorf("store calls = %d, want 3", got)
	}
	entries, _ := os.ReadDir(h.cfg.CacheDir)
	if len(entries) != 0 {
		t.Errorf("cache not clean: %v", entries)
	}
}

func TestFetch_NoStore(t *testing.T) {
	h := newTestHub(t, nil)
	res := h.Fetch(context.Background(), "model")
	if !stderrors.Is(res.Cause, ErrNoStore) {
		t.Fatalf("Cause = %v, want ErrNoStore", res.Cause)
	}
}

func TestFetch_InvalidName(t *testing.T) {
	h := newTestHub(t, &flakyStore{})
	for _, name := range []string{"", "..", "../etc/passwd", "a/b", "name with spaces"} {
		if res := h.Fetch(context.Background(), name); res.OK() {
			t.Errorf("Fetch(%q) should fail", name)
		}
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.CacheDir == "" || cfg.MaxAttempts != 3 || cfg.InitialBackoff <= 0 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Region != store.DefaultRegion {
		t.Errorf("Region = %q", cfg.Region)
	}
}
