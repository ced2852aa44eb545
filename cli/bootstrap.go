package cli

import (
	"context"
	"runtime"

	"github.com/diarkit/diarkit/application"
	"github.com/diarkit/diarkit/backend"
	"github.com/diarkit/diarkit/config"
	"github.com/diarkit/diarkit/device"
	"github.com/diarkit/diarkit/errors"
	"github.com/diarkit/diarkit/hub"
	"github.com/diarkit/diarkit/logger"
	"github.com/diarkit/diarkit/store"
	"github.com/diarkit/diarkit/version"
)

// DefaultBootstrap loads the tool configuration and wires the production
// dispatcher: zerolog logging, the model hub over the configured store, the
// subprocess backend and the process-wide device booker.
func DefaultBootstrap(ctx context.Context, globals GlobalOptions) (*Dispatcher, error) {
	var opts []config.LoaderOption
	if globals.ConfigFile != "" {
		opts = append(opts, config.WithConfigFile(globals.ConfigFile))
	}
	if globals.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(globals.EnvFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if globals.LogLevel != "" {
		cfg.Logging.Level = globals.LogLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, errors.InvalidInput("--log-level", err.Error())
		}
	}

	logger.Init(cfg.Logging, version.Name)
	log := logger.GetGlobalLogger()
	logger.RegisterComponents("cli", "device", "hub", "backend", "application", "store")

	var st store.Store
	if cfg.Hub.Enabled() {
		st, err = store.New(ctx, cfg.Hub.Config, log)
		if err != nil {
			return nil, errors.Configuration("hub.provider", "Cannot open the model hub").WithCause(err)
		}
	}

	var backOpts []backend.Option
	if globals.Stdout != nil && globals.Stderr != nil {
		backOpts = append(backOpts, backend.WithOutput(globals.Stdout, globals.Stderr))
	}
	back := backend.New(cfg.BackendConfig(), log, backOpts...)

	return &Dispatcher{
		Builder: application.NewFactory(back, log),
		Devices: device.Default(),
		Hub:     hub.New(cfg.Hub, st, log),
		NumCPU:  runtime.NumCPU,
		Log:     logger.Get("cli"),
	}, nil
}
