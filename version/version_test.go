package version

import (
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() {
		Version, GitCommit, BuildTime = v, c, b
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
}

func TestGetWithBuildTime(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "2.0.0", "abc1234", "2026-03-01T10:00:00Z"

	info := Get()
	if info.BuildDate.Year() != 2026 || info.BuildDate.Month() != time.March {
		t.Errorf("unexpected build date %v", info.BuildDate)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("ldflags commit should win, got %q", info.GitCommit)
	}
}

func TestInfoShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "2.0.0"}, "2.0.0"},
		{Info{Version: "2.0.0", GitCommit: "abc1234"}, "2.0.0-abc1234"},
		{Info{Version: "2.0.0", GitCommit: "abc1234", Dirty: true}, "2.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("shortCommit = %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("shortCommit = %q", got)
	}
}

func TestString(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "2.0.0", "abc1234", "2026-03-01T10:00:00Z"

	got := String()
	if !strings.HasPrefix(got, "diarkit 2.0.0-abc1234") {
		t.Errorf("unexpected version line %q", got)
	}
	if !strings.Contains(got, "(built 2026-03-01T10:00:00Z)") {
		t.Errorf("expected build date in %q", got)
	}
}
