package application

import (
	"fmt"

	"github.com/diarkit/diarkit/errors"
)

// Resolve returns the explicit value when set, else the value offered by
// provider, else a configuration error naming the command line option.
func Resolve[T any](explicit *T, provider func() (T, bool), option string) (T, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if provider != nil {
		if v, ok := provider(); ok {
			return v, nil
		}
	}
	var zero T
	return zero, errors.Configuration("--"+option,
		fmt.Sprintf("Task has no '%s' defined. Use '--%s' option to provide one.", option, option))
}

// ResolveDuration resolves the chunk duration from --duration or the
// duration the application was trained with.
func ResolveDuration(explicit *float64, app Application) (float64, error) {
	var provider func() (float64, bool)
	if p, ok := app.(DurationProvider); ok {
		provider = p.Duration
	}
	return Resolve(explicit, provider, "duration")
}

// ResolveMetric resolves the embedding comparison metric from --metric or
// the metric defined in the experiment configuration.
func ResolveMetric(explicit *string, app Application) (string, error) {
	var provider func() (string, bool)
	if p, ok := app.(MetricProvider); ok {
		provider = p.Metric
	}
	return Resolve(explicit, provider, "metric")
}
