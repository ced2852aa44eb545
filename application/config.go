package application

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/diarkit/diarkit/device"
)

// Default option values.
const (
	DefaultTrainSubset    = "train"
	DefaultValidateSubset = "development"
	DefaultApplySubset    = "test"
	DefaultFrom           = 0
	DefaultTo             = 100
	DefaultEvery          = 1
	DefaultBatchSize      = 32
	DefaultPurity         = 0.9
	DefaultPrecision      = 0.8
	DefaultStep           = 0.25
)

// WarmStart is where training resumes: an epoch of the current run or an
// existing checkpoint file.
type WarmStart struct {
	Epoch      int    `flag:"--from" validate:"gte=0"`
	Checkpoint string `flag:"--pretrained"`
}

// FromEpoch resumes training at epoch.
func FromEpoch(epoch int) WarmStart { return WarmStart{Epoch: epoch} }

// FromCheckpoint warm starts training with the weights at path.
func FromCheckpoint(path string) WarmStart { return WarmStart{Checkpoint: path} }

// IsCheckpoint reports whether training starts from a checkpoint file.
func (w WarmStart) IsCheckpoint() bool { return w.Checkpoint != "" }

func (w WarmStart) String() string {
	if w.IsCheckpoint() {
		return w.Checkpoint
	}
	return strconv.Itoa(w.Epoch)
}

// MarshalJSON encodes the checkpoint path as a string and the epoch as a number.
func (w WarmStart) MarshalJSON() ([]byte, error) {
	if w.IsCheckpoint() {
		return json.Marshal(w.Checkpoint)
	}
	return json.Marshal(w.Epoch)
}

// TrainConfig holds the train parameters.
type TrainConfig struct {
	Subset    string        `json:"subset" flag:"--subset" validate:"required"`
	WarmStart WarmStart     `json:"warm_start"`
	Epochs    int           `json:"epochs" flag:"--to" validate:"gte=0"`
	Device    device.Device `json:"device"`
}

// ValidateConfig holds the validate parameters. Metric is only used by the
// speaker embedding task.
type ValidateConfig struct {
	Subset        string        `json:"subset" flag:"--subset" validate:"required"`
	Start         int           `json:"start" flag:"--from" validate:"gte=0"`
	End           int           `json:"end" flag:"--to" validate:"gtefield=Start"`
	Every         int           `json:"every" flag:"--every" validate:"gte=1"`
	Chronological bool          `json:"chronological"`
	BatchSize     int           `json:"batch_size" flag:"--batch" validate:"gte=1"`
	NJobs         int           `json:"n_jobs" flag:"--parallel" validate:"gte=1"`
	Purity        float64       `json:"purity" flag:"--purity" validate:"gte=0,lte=1"`
	Diarization   bool          `json:"diarization"`
	Precision     float64       `json:"precision" flag:"--precision" validate:"gte=0,lte=1"`
	Duration      float64       `json:"duration" flag:"--duration" validate:"gt=0"`
	Step          float64       `json:"step" flag:"--step" validate:"gt=0"`
	Metric        string        `json:"metric,omitempty" flag:"--metric"`
	Device        device.Device `json:"device"`
}

// ApplyConfig holds the apply parameters.
type ApplyConfig struct {
	Subset    string        `json:"subset" flag:"--subset" validate:"required"`
	BatchSize int           `json:"batch_size" flag:"--batch" validate:"gte=1"`
	Duration  float64       `json:"duration" flag:"--duration" validate:"gt=0"`
	Step      float64       `json:"step" flag:"--step" validate:"gt=0"`
	Device    device.Device `json:"device"`
}

// Schedule selects the epochs to validate: every Every epochs from Start to
// End inclusive. End may be far beyond the last trained epoch; the worker
// walks the schedule as checkpoints appear.
type Schedule struct {
	Start         int  `json:"start"`
	End           int  `json:"end"`
	Every         int  `json:"every"`
	Chronological bool `json:"chronological"`
}

// Schedule returns the epoch schedule of c.
func (c ValidateConfig) Schedule() Schedule {
	return Schedule{Start: c.Start, End: c.End, Every: c.Every, Chronological: c.Chronological}
}

// Contains reports whether epoch is scheduled.
func (s Schedule) Contains(epoch int) bool {
	if s.Every < 1 || epoch < s.Start || epoch > s.End {
		return false
	}
	return (epoch-s.Start)%s.Every == 0
}

// Select returns the scheduled epochs among available (ascending), most
// recent first unless the schedule is chronological.
func (s Schedule) Select(available []int) []int {
	var epochs []int
	for _, e := range available {
		if s.Contains(e) {
			epochs = append(epochs, e)
		}
	}
	if !s.Chronological {
		slices.Reverse(epochs)
	}
	return epochs
}
