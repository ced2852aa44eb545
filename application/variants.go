package application

import (
	"context"

	"github.com/diarkit/diarkit/errors"
)

// SpeechActivityDetection detects speech regions.
type SpeechActivityDetection struct{ *base }

// Validate implements Application.
func (a *SpeechActivityDetection) Validate(ctx context.Context, protocol string, cfg ValidateConfig) error {
	return a.validate(ctx, protocol, cfg, nil)
}

// SegmentationCriterion tunes the peak detection threshold that maximizes
// coverage while keeping purity above a target.
type SegmentationCriterion struct {
	Purity      float64 `json:"purity"`
	Diarization bool    `json:"diarization"`
}

// SpeakerChangeDetection detects speaker change points.
type SpeakerChangeDetection struct{ *base }

// Validate implements Application.
func (a *SpeakerChangeDetection) Validate(ctx context.Context, protocol string, cfg ValidateConfig) error {
	return a.validate(ctx, protocol, cfg, SegmentationCriterion{
		Purity:      cfg.Purity,
		Diarization: cfg.Diarization,
	})
}

// DetectionCriterion tunes the detection threshold that maximizes recall
// while keeping precision above a target.
type DetectionCriterion struct {
	Precision float64 `json:"precision"`
}

// OverlapDetection detects regions with two or more simultaneous speakers.
type OverlapDetection struct{ *base }

// Validate implements Application.
func (a *OverlapDetection) Validate(ctx context.Context, protocol string, cfg ValidateConfig) error {
	return a.validate(ctx, protocol, cfg, DetectionCriterion{Precision: cfg.Precision})
}

// EmbeddingCriterion compares embeddings with Metric. Diarization protocols
// also use the purity target.
type EmbeddingCriterion struct {
	Metric      string  `json:"metric"`
	Purity      float64 `json:"purity"`
	Diarization bool    `json:"diarization"`
}

// SpeakerEmbedding projects audio chunks into a speaker embedding space.
type SpeakerEmbedding struct{ *base }

// Metric implements MetricProvider.
func (a *SpeakerEmbedding) Metric() (string, bool) { return a.config.Metric() }

// Validate implements Application.
func (a *SpeakerEmbedding) Validate(ctx context.Context, protocol string, cfg ValidateConfig) error {
	if cfg.Metric == "" {
		return errors.Configuration("--metric",
			"Task has no 'metric' defined. Use '--metric' option to provide one.")
	}
	return a.validate(ctx, protocol, cfg, EmbeddingCriterion{
		Metric:      cfg.Metric,
		Purity:      cfg.Purity,
		Diarization: cfg.Diarization,
	})
}

// DomainClassification predicts the domain of a recording.
type DomainClassification struct{ *base }

// Validate implements Application.
func (a *DomainClassification) Validate(ctx context.Context, protocol string, cfg ValidateConfig) error {
	return a.validate(ctx, protocol, cfg, nil)
}
