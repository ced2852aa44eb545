package application

import "fmt"

// Task selects the Application variant.
type Task int

const (
	SpeechActivityDetectionTask Task = iota + 1
	SpeakerChangeDetectionTask
	OverlapDetectionTask
	SpeakerEmbeddingTask
	DomainClassificationTask
)

var taskNames = map[Task]string{
	SpeechActivityDetectionTask: "sad",
	SpeakerChangeDetectionTask:  "scd",
	OverlapDetectionTask:        "ovl",
	SpeakerEmbeddingTask:        "emb",
	DomainClassificationTask:    "dom",
}

var taskDescriptions = map[Task]string{
	SpeechActivityDetectionTask: "Speech activity detection",
	SpeakerChangeDetectionTask:  "Speaker change detection",
	OverlapDetectionTask:        "Overlapped speech detection",
	SpeakerEmbeddingTask:        "Speaker embedding",
	DomainClassificationTask:    "Domain classification",
}

// Tasks returns every task in command line order.
func Tasks() []Task {
	return []Task{
		SpeechActivityDetectionTask,
		SpeakerChangeDetectionTask,
		OverlapDetectionTask,
		SpeakerEmbeddingTask,
		DomainClassificationTask,
	}
}

// String returns the command line name of the task (sad, scd, ...).
func (t Task) String() string {
	if name, ok := taskNames[t]; ok {
		return name
	}
	return fmt.Sprintf("task(%d)", int(t))
}

// Description returns a human-readable name for the task.
func (t Task) Description() string {
	return taskDescriptions[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t Task) MarshalText() ([]byte, error) {
	if _, ok := taskNames[t]; !ok {
		return nil, fmt.Errorf("unknown task %d", int(t))
	}
	return []byte(t.String()), nil
}

// Mode is a lifecycle stage of an Application.
type Mode string

const (
	ModeTrain    Mode = "train"
	ModeValidate Mode = "validate"
	ModeApply    Mode = "apply"
)

// Modes returns every mode in lifecycle order.
func Modes() []Mode {
	return []Mode{ModeTrain, ModeValidate, ModeApply}
}
