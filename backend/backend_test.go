package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diarkit/diarkit/errors"
	"github.com/diarkit/diarkit/logger"
)

func testJob(t *testing.T) Job {
	t.Helper()
	return Job{
		RunID:    "run-1",
		Task:     "sad",
		Mode:     "train",
		Protocol: "AMI.SpeakerDiarization.MixHeadset",
		Root:     "/exp",
		Dir:      filepath.Join(t.TempDir(), "train", "AMI.SpeakerDiarization.MixHeadset.train"),
		Params:   map[string]any{"subset": "train", "epochs": 100},
	}
}

func stubRun(b *Backend, fn RunFunc) *Backend {
	b.run = fn
	return b
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if len(cfg.Command) != 1 || cfg.Command[0] != DefaultCommand[0] {
		t.Errorf("Command = %v", cfg.Command)
	}
	if cfg.GracePeriod != 30*time.Second {
		t.Errorf("GracePeriod = %v", cfg.GracePeriod)
	}

	cfg = Config{Command: []string{"python", "-m", "worker"}, GracePeriod: time.Second}
	cfg.ApplyDefaults()
	if len(cfg.Command) != 3 || cfg.GracePeriod != time.Second {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}

	cfg = Config{Command: CommandLine{"/opt/my models/worker"}}
	cfg.ApplyDefaults()
	if len(cfg.Command) != 1 || cfg.Command[0] != "/opt/my models/worker" {
		t.Errorf("worker path with spaces was altered: %q", cfg.Command)
	}
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		in   string
		want CommandLine
	}{
		{"diarkit-worker", CommandLine{"diarkit-worker"}},
		{"python -m  worker", CommandLine{"python", "-m", "worker"}},
		{"  ", CommandLine{}},
	}
	for _, tt := range tests {
		if got := ParseCommandLine(tt.in); strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("ParseCommandLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteJob(t *testing.T) {
	job := testJob(t)
	path, err := WriteJob(job)
	if err != nil {
		t.Fatalf("WriteJob: %v", err)
	}
	if filepath.Base(path) != JobFile {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("job.json is not valid JSON: %v", err)
	}
	if decoded["task"] != "sad" || decoded["mode"] != "train" {
		t.Errorf("decoded = %v", decoded)
	}
	params, ok := decoded["params"].(map[string]any)
	if !ok || params["subset"] != "train" {
		t.Errorf("params = %v", decoded["params"])
	}
}

func TestWriteJob_RequiresDir(t *testing.T) {
	if _, err := WriteJob(Job{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSubmit_BuildsWorkerCommand(t *testing.T) {
	job := testJob(t)
	var got Command
	b := stubRun(New(Config{Command: CommandLine{"python", "-m", "worker"}, Env: []string{"A=1"}}, logger.NewNop()),
		func(_ context.Context, cmd Command) (*Result, error) {
			got = cmd
			return &Result{}, nil
		})

	if err := b.Submit(context.Background(), job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got.Binary != "python" {
		t.Errorf("Binary = %q", got.Binary)
	}
	want := []string{"-m", "worker", "train", "--job", filepath.Join(job.Dir, JobFile)}
	if strings.Join(got.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Args = %v, want %v", got.Args, want)
	}
	if got.Dir != job.Dir {
		t.Errorf("Dir = %q, want %q", got.Dir, job.Dir)
	}
	if len(got.Env) != 1 || got.Env[0] != "A=1" {
		t.Errorf("Env = %v", got.Env)
	}
}

func TestSubmit_WorkerFailure(t *testing.T) {
	job := testJob(t)
	b := stubRun(New(Config{}, logger.NewNop()),
		func(_ context.Context, _ Command) (*Result, error) {
			return &Result{ExitCode: 1, Stderr: []byte("line 1\nCUDA out of memory\n")}, stderrors.New("exit code 1")
		})

	err := b.Submit(context.Background(), job)
	if !errors.IsCode(err, errors.ErrCodeExternalService) {
		t.Fatalf("error = %v, want EXTERNAL_SERVICE_ERROR", err)
	}
	if !strings.Contains(errors.Describe(err), "CUDA out of memory") {
		t.Errorf("describe = %q, want stderr tail", errors.Describe(err))
	}
	if errors.ExitCode(err) != errors.ExitFailure {
		t.Errorf("exit code = %d", errors.ExitCode(err))
	}
}

func TestSubmit_Timeout(t *testing.T) {
	job := testJob(t)
	b := stubRun(New(Config{Timeout: 10 * time.Millisecond}, logger.NewNop()),
		func(ctx context.Context, _ Command) (*Result, error) {
			<-ctx.Done()
			return &Result{ExitCode: -1}, ctx.Err()
		})

	err := b.Submit(context.Background(), job)
	if !errors.IsCode(err, errors.ErrCodeTimeout) {
		t.Fatalf("error = %v, want TIMEOUT", err)
	}
}

func TestSubmit_RealProcess(t *testing.T) {
	job := testJob(t)
	var out bytes.Buffer
	b := New(Config{Command: []string{"sh", "-c", `test -f "$2" && echo "$0 ok"`}}, logger.NewNop(),
		WithOutput(&out, &out))

	if err := b.Submit(context.Background(), job); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !strings.Contains(out.String(), "train ok") {
		t.Errorf("worker output = %q", out.String())
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"empty", "", 3, ""},
		{"short", "a\nb\n", 3, "a\nb"},
		{"truncated", "a\nb\nc\nd\n", 2, "c\nd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tail([]byte(tt.in), tt.n); got != tt.want {
				t.Errorf("Tail() = %q, want %q", got, tt.want)
			}
		})
	}
}
