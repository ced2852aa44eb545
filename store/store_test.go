package store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diarkit/diarkit/logger"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"local ok", Config{Provider: ProviderLocal, BasePath: "/models"}, false},
		{"local missing path", Config{Provider: ProviderLocal}, true},
		{"http ok", Config{Provider: ProviderHTTP, BaseURL: "https://models.example.org"}, false},
		{"http missing url", Config{Provider: ProviderHTTP}, true},
		{"s3 ok", Config{Provider: ProviderS3, Bucket: "b", Region: "eu-west-1"}, false},
		{"s3 missing bucket", Config{Provider: ProviderS3, Region: "eu-west-1"}, true},
		{"unknown", Config{Provider: "ftp"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Region != DefaultRegion {
		t.Errorf("expected %s, got %s", DefaultRegion, cfg.Region)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.Enabled() {
		t.Error("empty provider should be disabled")
	}
}

func TestNewUnregisteredProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: ProviderS3, Bucket: "b"}, logger.NewNop())
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected not registered error, got %v", err)
	}
	if !strings.Contains(err.Error(), "available: http, local") {
		t.Errorf("expected registered providers in %v", err)
	}
}

func TestProviders(t *testing.T) {
	got := strings.Join(Providers(), ",")
	if !strings.Contains(got, ProviderLocal) || !strings.Contains(got, ProviderHTTP) {
		t.Errorf("expected local and http to be registered, got %s", got)
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sad_ami.pt"), []byte("weights"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := New(context.Background(), Config{Provider: ProviderLocal, BasePath: dir}, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	ok, err := s.Exists(ctx, "sad_ami.pt")
	if err != nil || !ok {
		t.Fatalf("expected object to exist, got %v %v", ok, err)
	}
	ok, err = s.Exists(ctx, "missing.pt")
	if err != nil || ok {
		t.Fatalf("expected object to be missing, got %v %v", ok, err)
	}

	rc, err := s.Open(ctx, "sad_ami.pt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "weights" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := s.Open(ctx, "missing.pt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if loc := s.Location("../../etc/passwd"); !strings.HasPrefix(loc, dir) {
		t.Errorf("location escaped base path: %s", loc)
	}
}

func TestNewLocalRequiresDirectory(t *testing.T) {
	if _, err := NewLocal(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing base path")
	}
}

func TestHTTPStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hub/sad_ami.pt":
			_, _ = w.Write([]byte("weights"))
		case "/hub/busy.pt":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL+"/hub", srv.Client())
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	ctx := context.Background()

	if got := s.Location("sad_ami.pt"); got != srv.URL+"/hub/sad_ami.pt" {
		t.Errorf("unexpected location %s", got)
	}

	rc, err := s.Open(ctx, "sad_ami.pt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "weights" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := s.Open(ctx, "missing.pt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = s.Open(ctx, "busy.pt")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !statusErr.Temporary() {
		t.Error("503 should be temporary")
	}

	ok, err := s.Exists(ctx, "sad_ami.pt")
	if err != nil || !ok {
		t.Errorf("expected exists, got %v %v", ok, err)
	}
	ok, err = s.Exists(ctx, "missing.pt")
	if err != nil || ok {
		t.Errorf("expected missing, got %v %v", ok, err)
	}
}

func TestNewHTTPRejectsScheme(t *testing.T) {
	if _, err := NewHTTP("ftp://example.org", nil); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
}
