package cli

import (
	"github.com/spf13/pflag"

	"github.com/diarkit/diarkit/application"
)

// Options holds the command line options of one invocation. Pointer fields
// are nil when the option was not given and its default depends on context.
type Options struct {
	Subset      *string
	GPU         bool
	From        int
	To          int
	Batch       int
	Step        float64
	Duration    *float64
	Metric      *string
	Pretrained  string
	Every       int
	Evergreen   bool
	Parallel    *int
	Purity      float64
	Diarization bool
	Precision   float64
}

// flagValues receives the raw flag values before optional ones are resolved.
type flagValues struct {
	subset   string
	duration float64
	metric   string
	parallel int
	opts     Options
}

func addOptionFlags(fs *pflag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.SortFlags = false

	// Common
	fs.StringVar(&v.subset, "subset", "", `subset to use (defaults to "train", "development" or "test" depending on the mode)`)
	fs.BoolVar(&v.opts.GPU, "gpu", false, "run on GPUs (defaults to CPUs)")
	fs.IntVar(&v.opts.From, "from", application.DefaultFrom, "start training (resp. validating) at this epoch, not used for inference")
	fs.IntVar(&v.opts.To, "to", application.DefaultTo, "end training (resp. validating) at this epoch")
	fs.IntVar(&v.opts.Batch, "batch", application.DefaultBatchSize, "batch size used for validation and inference")
	fs.Float64Var(&v.opts.Step, "step", application.DefaultStep, "ratio of audio chunk duration used as step between two consecutive chunks")

	// Speaker embedding
	fs.Float64Var(&v.duration, "duration", 0, "use audio chunks with that duration (defaults to the duration used in training)")
	fs.StringVar(&v.metric, "metric", "", `metric used to compare embeddings, e.g. "cosine" (defaults to <root>/config.yml)`)

	// Training
	fs.StringVar(&v.opts.Pretrained, "pretrained", "", "warm start training from a checkpoint path or the name of a pre-trained model")

	// Validation
	fs.IntVar(&v.opts.Every, "every", application.DefaultEvery, "validate model every that many epochs")
	fs.BoolVar(&v.opts.Evergreen, "evergreen", false, "prioritize validation of most recent epoch")
	fs.IntVar(&v.parallel, "parallel", 0, "process that many files in parallel (defaults to all CPUs)")
	fs.Float64Var(&v.opts.Purity, "purity", application.DefaultPurity, "target purity")
	fs.BoolVar(&v.opts.Diarization, "diarization", false, "use diarization purity and coverage instead of segmentation ones")
	fs.Float64Var(&v.opts.Precision, "precision", application.DefaultPrecision, "target precision")

	return v
}

// options returns the parsed options, leaving unset optional values nil.
func (v *flagValues) options(fs *pflag.FlagSet) Options {
	opts := v.opts
	if fs.Changed("subset") {
		opts.Subset = &v.subset
	}
	if fs.Changed("duration") {
		opts.Duration = &v.duration
	}
	if fs.Changed("metric") {
		opts.Metric = &v.metric
	}
	if fs.Changed("parallel") {
		opts.Parallel = &v.parallel
	}
	return opts
}
