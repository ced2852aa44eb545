package application

import (
	"fmt"

	"github.com/diarkit/diarkit/errors"
	"github.com/diarkit/diarkit/experiment"
	"github.com/diarkit/diarkit/logger"
)

// Factory is the default Builder. It reads the experiment configuration and
// picks the variant matching the task.
type Factory struct {
	Backend Submitter
	Log     *logger.Logger
}

// NewFactory creates a builder submitting jobs to sub.
func NewFactory(sub Submitter, log *logger.Logger) *Factory {
	return &Factory{Backend: sub, Log: log.WithComponent("application")}
}

// New implements Builder.
func (f *Factory) New(task Task, root string, training bool) (Application, error) {
	b, err := f.base(task, root, training)
	if err != nil {
		return nil, err
	}
	return variant(task, b)
}

// FromTrainDir implements Builder.
func (f *Factory) FromTrainDir(task Task, train string, training bool) (Application, error) {
	b, err := f.base(task, experiment.RootFromTrainDir(train), training)
	if err != nil {
		return nil, err
	}
	b.trainDir = train
	return variant(task, b)
}

// FromValidateDir implements Builder. The epoch selected by validation is
// read from <validate>/params.yml.
func (f *Factory) FromValidateDir(task Task, validate string, training bool) (Application, error) {
	params, err := experiment.LoadParams(validate)
	if err != nil {
		return nil, err
	}
	train := experiment.TrainDirFromValidateDir(validate)
	b, err := f.base(task, experiment.RootFromTrainDir(train), training)
	if err != nil {
		return nil, err
	}
	b.trainDir = train
	b.validateDir = validate
	b.epoch = *params.Epoch
	return variant(task, b)
}

func (f *Factory) base(task Task, root string, training bool) (*base, error) {
	cfg, err := experiment.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	log := f.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &base{
		task:     task,
		root:     root,
		config:   cfg,
		training: training,
		backend:  f.Backend,
		log:      log.WithFields(logger.Fields(logger.FieldTask, task.String())),
	}, nil
}

func variant(task Task, b *base) (Application, error) {
	switch task {
	case SpeechActivityDetectionTask:
		return &SpeechActivityDetection{base: b}, nil
	case SpeakerChangeDetectionTask:
		return &SpeakerChangeDetection{base: b}, nil
	case OverlapDetectionTask:
		return &OverlapDetection{base: b}, nil
	case SpeakerEmbeddingTask:
		return &SpeakerEmbedding{base: b}, nil
	case DomainClassificationTask:
		return &DomainClassification{base: b}, nil
	default:
		return nil, errors.Internal(fmt.Errorf("no application for %s", task))
	}
}
