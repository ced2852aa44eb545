// Package application defines the five task applications and how they are
// built from an experiment directory.
//
// An Application owns the lifecycle of one experiment for one task: Train
// writes checkpoints under <root>/train, Validate selects the best epoch
// under <train>/validate and Apply runs inference under <validate>/apply.
// The heavy lifting is delegated to the compute backend through a Submitter.
package application

import (
	"context"

	"github.com/diarkit/diarkit/backend"
)

// Application is the capability shared by every task variant.
type Application interface {
	Task() Task
	Train(ctx context.Context, protocol string, cfg TrainConfig) error
	Validate(ctx context.Context, protocol string, cfg ValidateConfig) error
	Apply(ctx context.Context, protocol string, cfg ApplyConfig) error
}

// DurationProvider is implemented by applications that know the chunk
// duration they were trained with.
type DurationProvider interface {
	Duration() (float64, bool)
}

// MetricProvider is implemented by applications that know which metric
// compares their outputs.
type MetricProvider interface {
	Metric() (string, bool)
}

// Submitter hands jobs to the compute backend.
type Submitter interface {
	Submit(ctx context.Context, job backend.Job) error
}

// Builder constructs applications.
type Builder interface {
	// New binds a fresh application to an experiment root.
	New(task Task, root string, training bool) (Application, error)
	// FromTrainDir rebuilds an application from <root>/train/<protocol>.<subset>.
	FromTrainDir(task Task, train string, training bool) (Application, error)
	// FromValidateDir rebuilds an application from <train>/validate/<protocol>.<subset>.
	FromValidateDir(task Task, validate string, training bool) (Application, error)
}

var (
	_ Application = (*SpeechActivityDetection)(nil)
	_ Application = (*SpeakerChangeDetection)(nil)
	_ Application = (*OverlapDetection)(nil)
	_ Application = (*SpeakerEmbedding)(nil)
	_ Application = (*DomainClassification)(nil)

	_ DurationProvider = (*SpeechActivityDetection)(nil)
	_ MetricProvider   = (*SpeakerEmbedding)(nil)

	_ Submitter = (*backend.Backend)(nil)
)
