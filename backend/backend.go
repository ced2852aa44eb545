package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diarkit/diarkit/errors"
	"github.com/diarkit/diarkit/logger"
)

// JobFile is the name of the job description written into the job directory.
const JobFile = "job.json"

// DefaultCommand is the worker invoked when none is configured.
var DefaultCommand = CommandLine{"diarkit-worker"}

// CommandLine is a worker executable followed by its leading arguments.
// Elements are passed to the worker verbatim.
type CommandLine []string

// ParseCommandLine splits a command written as a single string (a YAML
// scalar or an environment variable) on white space.
func ParseCommandLine(s string) CommandLine {
	return strings.Fields(s)
}

// Config configures the compute backend.
type Config struct {
	// Command is the worker executable followed by its leading arguments.
	Command CommandLine `yaml:"command" mapstructure:"command" validate:"min=1"`
	// GracePeriod is how long the worker gets between SIGTERM and SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
	// Timeout bounds a whole job. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Env holds extra KEY=VALUE pairs passed to the worker.
	Env []string `yaml:"env" mapstructure:"env"`
}

// ApplyDefaults applies default values to the backend configuration.
func (c *Config) ApplyDefaults() {
	if len(c.Command) == 0 {
		c.Command = append(CommandLine(nil), DefaultCommand...)
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 30 * time.Second
	}
}

// Job describes one train, validate or apply run handed to the worker.
type Job struct {
	RunID     string    `json:"run_id"`
	Task      string    `json:"task"`
	Mode      string    `json:"mode"`
	Protocol  string    `json:"protocol"`
	Root      string    `json:"root"`
	Dir       string    `json:"dir"`
	Params    any       `json:"params"`
	CreatedAt time.Time `json:"created_at"`
}

// RunFunc executes a command. Run is the production implementation.
type RunFunc func(ctx context.Context, cmd Command) (*Result, error)

// Backend submits jobs to the worker command.
type Backend struct {
	cfg    Config
	log    *logger.Logger
	run    RunFunc
	stdout io.Writer
	stderr io.Writer
}

// Option customizes a Backend.
type Option func(*Backend)

// WithOutput sets where the worker output is streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Backend) {
		b.stdout = stdout
		b.stderr = stderr
	}
}

// New creates a backend from configuration.
func New(cfg Config, log *logger.Logger, opts ...Option) *Backend {
	cfg.ApplyDefaults()
	b := &Backend{
		cfg:    cfg,
		log:    log.WithComponent("backend"),
		run:    Run,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Submit writes the job description and runs the worker until it exits.
func (b *Backend) Submit(ctx context.Context, job Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	jobPath, err := WriteJob(job)
	if err != nil {
		return errors.Internal(err)
	}

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	args := append([]string(nil), b.cfg.Command[1:]...)
	args = append(args, job.Mode, "--job", jobPath)
	cmd := Command{
		Binary:      b.cfg.Command[0],
		Args:        args,
		Dir:         job.Dir,
		Env:         b.cfg.Env,
		Stdout:      b.stdout,
		Stderr:      b.stderr,
		GracePeriod: b.cfg.GracePeriod,
	}

	log := b.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldTask, job.Task,
		logger.FieldMode, job.Mode,
		logger.FieldProtocol, job.Protocol,
	))
	log.Info("submitting job", logger.Fields(logger.FieldPath, jobPath, "worker", b.cfg.Command[0]))

	result, err := b.run(ctx, cmd)
	if err != nil {
		log.WithError(err).Error("worker failed", logger.Fields(logger.FieldPath, jobPath))
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.Timeout(job.Mode).WithCause(err)
		}
		var stderrOut []byte
		if result != nil {
			stderrOut = result.Stderr
		}
		if t := Tail(stderrOut, 20); t != "" {
			err = fmt.Errorf("%w\n%s", err, t)
		}
		return errors.ExternalServiceError("worker", err).WithDetail("job", jobPath)
	}

	log.Info("job finished", logger.Elapsed(job.Mode, result.Duration))
	return nil
}

// WriteJob serializes job into <job.Dir>/job.json and returns its path.
func WriteJob(job Job) (string, error) {
	if job.Dir == "" {
		return "", fmt.Errorf("backend: job directory is required")
	}
	if err := os.MkdirAll(job.Dir, 0o755); err != nil {
		return "", fmt.Errorf("backend: create job directory: %w", err)
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backend: encode job: %w", err)
	}
	path := filepath.Join(job.Dir, JobFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("backend: write job: %w", err)
	}
	return path, nil
}

// Tail returns the last n non-empty lines of out.
func Tail(out []byte, n int) string {
	lines := strings.Split(strings.TrimRight(string(bytes.TrimSpace(out)), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return ""
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
