package cli

import (
	"context"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/diarkit/diarkit/application"
	"github.com/diarkit/diarkit/device"
	"github.com/diarkit/diarkit/errors"
	"github.com/diarkit/diarkit/experiment"
	"github.com/diarkit/diarkit/hub"
	"github.com/diarkit/diarkit/logger"
	"github.com/diarkit/diarkit/validation"
)

// Request is one parsed invocation.
type Request struct {
	Task     application.Task
	Mode     application.Mode
	Path     string
	Protocol string
	Options  Options
}

// Dispatcher routes a request to the matching Application lifecycle call.
type Dispatcher struct {
	Builder application.Builder
	Devices device.Booker
	Hub     hub.Fetcher
	NumCPU  func() int
	Log     *logger.Logger
}

// Dispatch books the compute device, builds the application for the
// requested mode and runs it.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	log := d.logger().WithContext(ctx).WithFields(logger.Fields(
		logger.FieldTask, req.Task.String(),
		logger.FieldMode, string(req.Mode),
		logger.FieldProtocol, req.Protocol,
	))

	// Book the device before anything else so that an unavailable GPU is
	// reported right away.
	dev, err := d.Devices.Book(ctx, device.KindFor(req.Options.GPU))
	if err != nil {
		return err
	}
	log.Debug("device booked", logger.Fields(logger.FieldDevice, dev.String()))

	dir, err := experiment.ResolveDir(req.Path)
	if err != nil {
		return err
	}

	switch req.Mode {
	case application.ModeTrain:
		app, err := d.Builder.New(req.Task, dir, true)
		if err != nil {
			return err
		}
		cfg, err := d.trainConfig(ctx, req.Options, dev)
		if err != nil {
			return err
		}
		log.Info("training", logger.Fields(logger.FieldSubset, cfg.Subset, "warm_start", cfg.WarmStart.String(), "epochs", cfg.Epochs))
		return app.Train(ctx, req.Protocol, cfg)

	case application.ModeValidate:
		app, err := d.Builder.FromTrainDir(req.Task, dir, false)
		if err != nil {
			return err
		}
		cfg, err := d.validateConfig(req.Task, app, req.Options, dev)
		if err != nil {
			return err
		}
		log.Info("validating", logger.Fields(logger.FieldSubset, cfg.Subset, "n_jobs", cfg.NJobs))
		return app.Validate(ctx, req.Protocol, cfg)

	case application.ModeApply:
		app, err := d.Builder.FromValidateDir(req.Task, dir, false)
		if err != nil {
			return err
		}
		cfg, err := d.applyConfig(app, req.Options, dev)
		if err != nil {
			return err
		}
		log.Info("applying", logger.Fields(logger.FieldSubset, cfg.Subset))
		return app.Apply(ctx, req.Protocol, cfg)

	default:
		return errors.Usage("unknown mode " + string(req.Mode))
	}
}

func (d *Dispatcher) trainConfig(ctx context.Context, opts Options, dev device.Device) (application.TrainConfig, error) {
	cfg := application.TrainConfig{
		Subset:    subsetOr(opts, application.DefaultTrainSubset),
		WarmStart: application.FromEpoch(opts.From),
		Epochs:    opts.To,
		Device:    dev,
	}
	if opts.Pretrained != "" {
		path, err := d.pretrained(ctx, opts.Pretrained)
		if err != nil {
			return cfg, err
		}
		cfg.WarmStart = application.FromCheckpoint(path)
	}
	return cfg, validation.Validate(cfg)
}

// pretrained returns ref itself when it names an existing file, or the
// checkpoint fetched from the model hub.
func (d *Dispatcher) pretrained(ctx context.Context, ref string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	if d.Hub == nil {
		return "", errors.RemoteFetch(ref, hub.ErrNoStore)
	}
	res := d.Hub.Fetch(ctx, ref)
	if !res.OK() {
		return "", errors.RemoteFetch(ref, res.Cause)
	}
	return res.Path, nil
}

func (d *Dispatcher) validateConfig(task application.Task, app application.Application, opts Options, dev device.Device) (application.ValidateConfig, error) {
	cfg := application.ValidateConfig{
		Subset:        subsetOr(opts, application.DefaultValidateSubset),
		Start:         opts.From,
		End:           opts.To,
		Every:         opts.Every,
		Chronological: !opts.Evergreen,
		BatchSize:     opts.Batch,
		NJobs:         d.nJobs(opts),
		Purity:        opts.Purity,
		Diarization:   opts.Diarization,
		Precision:     opts.Precision,
		Step:          opts.Step,
		Device:        dev,
	}

	duration, err := application.ResolveDuration(opts.Duration, app)
	if err != nil {
		return cfg, err
	}
	cfg.Duration = duration

	if task == application.SpeakerEmbeddingTask {
		metric, err := application.ResolveMetric(opts.Metric, app)
		if err != nil {
			return cfg, err
		}
		cfg.Metric = metric
	}
	return cfg, validation.Validate(cfg)
}

func (d *Dispatcher) applyConfig(app application.Application, opts Options, dev device.Device) (application.ApplyConfig, error) {
	cfg := application.ApplyConfig{
		Subset:    subsetOr(opts, application.DefaultApplySubset),
		BatchSize: opts.Batch,
		Step:      opts.Step,
		Device:    dev,
	}
	duration, err := application.ResolveDuration(opts.Duration, app)
	if err != nil {
		return cfg, err
	}
	cfg.Duration = duration
	return cfg, validation.Validate(cfg)
}

func (d *Dispatcher) nJobs(opts Options) int {
	if opts.Parallel != nil {
		return *opts.Parallel
	}
	if d.NumCPU != nil {
		return d.NumCPU()
	}
	return runtime.NumCPU()
}

func (d *Dispatcher) logger() *logger.Logger {
	if d.Log == nil {
		return logger.NewNop()
	}
	return d.Log
}

func subsetOr(opts Options, def string) string {
	if opts.Subset != nil {
		return *opts.Subset
	}
	return def
}
