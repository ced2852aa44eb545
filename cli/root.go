package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/diarkit/diarkit/application"
	"github.com/diarkit/diarkit/errors"
	"github.com/diarkit/diarkit/version"
)

// GlobalOptions are the options shared by every command.
type GlobalOptions struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string

	// Stdout and Stderr receive the worker output.
	Stdout io.Writer
	Stderr io.Writer
}

// Bootstrap builds the dispatcher once the command line is parsed.
type Bootstrap func(ctx context.Context, globals GlobalOptions) (*Dispatcher, error)

const rootLong = `diarkit trains, validates and applies the neural building blocks of a
speaker diarization pipeline:

  sad  speech activity detection
  scd  speaker change detection
  ovl  overlapped speech detection
  emb  speaker embedding
  dom  domain classification

An experiment lives in a <root> directory containing config.yml. Training
artifacts go to <root>/train/<protocol>.<subset>, validation artifacts to
<train>/validate/<protocol>.<subset> and inference artifacts to
<validate>/apply/<epoch>.

Protocols are resolved by the worker through PYANNOTE_DATABASE_CONFIG
(or database.config in diarkit.yml).

Example:
  diarkit sad train ${PWD} Debug.SpeakerDiarization.Debug
  diarkit sad validate ${PWD}/train/Debug.SpeakerDiarization.Debug.train Debug.SpeakerDiarization.Debug`

var modeHelp = map[application.Mode]struct {
	path  string
	short string
}{
	application.ModeTrain:    {"root", "Train a model in an experiment root directory"},
	application.ModeValidate: {"train", "Validate the epochs of a training run"},
	application.ModeApply:    {"validate", "Apply the best validated epoch"},
}

// NewRootCommand builds the command tree. boot is invoked only when a
// lifecycle command actually runs.
func NewRootCommand(boot Bootstrap) *cobra.Command {
	globals := &GlobalOptions{}

	root := &cobra.Command{
		Use:           "diarkit",
		Short:         "Train, validate and apply speaker diarization models",
		Long:          rootLong,
		Version:       version.GetShortVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return errors.Usage("a task is required (sad, scd, ovl, emb or dom)")
		},
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Usage(err.Error())
	})
	root.PersistentFlags().StringVar(&globals.ConfigFile, "config", "", "tool configuration file (default: search diarkit.yml)")
	root.PersistentFlags().StringVar(&globals.EnvFile, "env-file", "", "environment file to load (default: search .env)")
	root.PersistentFlags().StringVar(&globals.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	for _, task := range application.Tasks() {
		root.AddCommand(newTaskCommand(task, globals, boot))
	}
	return root
}

func newTaskCommand(task application.Task, globals *GlobalOptions, boot Bootstrap) *cobra.Command {
	cmd := &cobra.Command{
		Use:   task.String(),
		Short: task.Description(),
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return errors.Usage("a mode is required (train, validate or apply)")
		},
	}
	for _, mode := range application.Modes() {
		cmd.AddCommand(newModeCommand(task, mode, globals, boot))
	}
	return cmd
}

func newModeCommand(task application.Task, mode application.Mode, globals *GlobalOptions, boot Bootstrap) *cobra.Command {
	help := modeHelp[mode]
	var flags *flagValues

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [options] <%s> <protocol>", mode, help.path),
		Short: help.short,
		Args:  exactArgs(help.path),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := Request{
				Task:     task,
				Mode:     mode,
				Path:     args[0],
				Protocol: args[1],
				Options:  flags.options(cmd.Flags()),
			}
			g := *globals
			g.Stdout, g.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			d, err := boot(cmd.Context(), g)
			if err != nil {
				return asAppError(err)
			}
			return asAppError(d.Dispatch(cmd.Context(), req))
		},
	}
	flags = addOptionFlags(cmd.Flags())
	return cmd
}

func exactArgs(path string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != 2 {
			return errors.Usage(fmt.Sprintf("expected <%s> <protocol>, got %d argument(s)", path, len(args)))
		}
		return nil
	}
}

// asAppError marks errors that escaped typing as internal, so that only
// cobra's own parse errors are reported as usage errors.
func asAppError(err error) error {
	if err == nil || errors.IsAppError(err) {
		return err
	}
	return errors.Internal(err)
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, boot Bootstrap) int {
	root := NewRootCommand(boot)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return errors.ExitOK
	}
	if !errors.IsAppError(err) {
		err = errors.Usage(err.Error())
	}

	fmt.Fprintf(stderr, "Error: %s\n", errors.Describe(err))
	if errors.IsCode(err, errors.ErrCodeUsage) && cmd != nil {
		fmt.Fprintf(stderr, "\n%s", cmd.UsageString())
	}
	return errors.ExitCode(err)
}
