package application

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/diarkit/diarkit/backend"
	"github.com/diarkit/diarkit/device"
	"github.com/diarkit/diarkit/errors"
	"github.com/diarkit/diarkit/experiment"
	"github.com/diarkit/diarkit/logger"
)

// base carries the state shared by all variants.
type base struct {
	task     Task
	root     string
	config   *experiment.Config
	training bool
	backend  Submitter
	log      *logger.Logger

	// Set when rebuilt from a train or validate directory.
	trainDir    string
	validateDir string
	epoch       int
}

// Task implements Application.
func (b *base) Task() Task { return b.task }

// Duration implements DurationProvider.
func (b *base) Duration() (float64, bool) { return b.config.Duration() }

type trainJob struct {
	Subset    string        `json:"subset"`
	WarmStart WarmStart     `json:"warm_start"`
	Epochs    int           `json:"epochs"`
	Device    device.Device `json:"device"`
	Weights   string        `json:"weights"`
}

// Train implements Application.
func (b *base) Train(ctx context.Context, protocol string, cfg TrainConfig) error {
	if !b.training {
		return errors.Internal(fmt.Errorf("%s application was not built for training", b.task))
	}
	if !cfg.WarmStart.IsCheckpoint() && cfg.WarmStart.Epoch > cfg.Epochs {
		return errors.InvalidInput("--from", fmt.Sprintf("--from (%d) must not exceed --to (%d)", cfg.WarmStart.Epoch, cfg.Epochs))
	}

	dir := experiment.TrainDir(b.root, protocol, cfg.Subset)
	switch {
	case cfg.WarmStart.IsCheckpoint():
		if err := requireFile(cfg.WarmStart.Checkpoint); err != nil {
			return err
		}
	case cfg.WarmStart.Epoch > 0:
		if err := requireFile(experiment.WeightsPath(dir, cfg.WarmStart.Epoch)); err != nil {
			return err
		}
	}

	return b.submit(ctx, ModeTrain, protocol, dir, trainJob{
		Subset:    cfg.Subset,
		WarmStart: cfg.WarmStart,
		Epochs:    cfg.Epochs,
		Device:    cfg.Device,
		Weights:   experiment.WeightsDir(dir),
	})
}

type validateJob struct {
	Subset     string        `json:"subset"`
	Schedule   Schedule      `json:"schedule"`
	Trained    []int         `json:"trained"`
	Weights    string        `json:"weights"`
	BatchSize  int           `json:"batch_size"`
	NJobs      int           `json:"n_jobs"`
	Duration   float64       `json:"duration"`
	Step       float64       `json:"step"`
	Device     device.Device `json:"device"`
	Criterion  any           `json:"criterion,omitempty"`
	ParamsFile string        `json:"params_file"`
}

// validate runs validation with a task-specific selection criterion.
func (b *base) validate(ctx context.Context, protocol string, cfg ValidateConfig, criterion any) error {
	if b.trainDir == "" {
		return errors.Internal(fmt.Errorf("%s application was not built from a train directory", b.task))
	}
	available, err := experiment.Epochs(b.trainDir)
	if err != nil {
		return errors.Internal(err)
	}
	schedule := cfg.Schedule()
	dir := experiment.ValidateDir(b.trainDir, protocol, cfg.Subset)
	return b.submit(ctx, ModeValidate, protocol, dir, validateJob{
		Subset:     cfg.Subset,
		Schedule:   schedule,
		Trained:    schedule.Select(available),
		Weights:    experiment.WeightsDir(b.trainDir),
		BatchSize:  cfg.BatchSize,
		NJobs:      cfg.NJobs,
		Duration:   cfg.Duration,
		Step:       cfg.Step,
		Device:     cfg.Device,
		Criterion:  criterion,
		ParamsFile: experiment.ParamsFile,
	})
}

type applyJob struct {
	Subset    string        `json:"subset"`
	Epoch     int           `json:"epoch"`
	Weights   string        `json:"weights"`
	BatchSize int           `json:"batch_size"`
	Duration  float64       `json:"duration"`
	Step      float64       `json:"step"`
	Device    device.Device `json:"device"`
	Output    string        `json:"output"`
}

// Apply implements Application.
func (b *base) Apply(ctx context.Context, protocol string, cfg ApplyConfig) error {
	if b.validateDir == "" {
		return errors.Internal(fmt.Errorf("%s application was not built from a validate directory", b.task))
	}
	weights := experiment.WeightsPath(b.trainDir, b.epoch)
	if err := requireFile(weights); err != nil {
		return err
	}
	dir := experiment.ApplyDir(b.validateDir, b.epoch)
	return b.submit(ctx, ModeApply, protocol, dir, applyJob{
		Subset:    cfg.Subset,
		Epoch:     b.epoch,
		Weights:   weights,
		BatchSize: cfg.BatchSize,
		Duration:  cfg.Duration,
		Step:      cfg.Step,
		Device:    cfg.Device,
		Output:    experiment.Name(protocol, cfg.Subset),
	})
}

func (b *base) submit(ctx context.Context, mode Mode, protocol, dir string, params any) error {
	if b.backend == nil {
		return errors.Internal(fmt.Errorf("no compute backend configured"))
	}
	b.log.WithContext(ctx).Info("starting "+string(mode), logger.Fields(
		logger.FieldMode, string(mode),
		logger.FieldProtocol, protocol,
		logger.FieldPath, dir,
	))
	return b.backend.Submit(ctx, backend.Job{
		RunID:     logger.RunIDFromContext(ctx),
		Task:      b.task.String(),
		Mode:      string(mode),
		Protocol:  protocol,
		Root:      b.root,
		Dir:       dir,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	})
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.PathNotFound(path, err)
	}
	if info.IsDir() {
		return errors.PathNotFound(path, fmt.Errorf("%s is a directory", path))
	}
	return nil
}
