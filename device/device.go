// Package device selects and books the compute device used by a run.
//
// A process books exactly one device. The first call to Book probes the
// hardware; every later call returns the same device or the same error.
package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/diarkit/diarkit/errors"
)

// Kind is the type of compute device.
type Kind string

const (
	CPU  Kind = "cpu"
	CUDA Kind = "cuda"
)

// KindFor returns CUDA when gpu is set and CPU otherwise.
func KindFor(gpu bool) Kind {
	if gpu {
		return CUDA
	}
	return CPU
}

// Device is a booked compute device.
type Device struct {
	Kind  Kind
	Index int
	Name  string
}

// String renders the device the way the worker expects it: "cpu" or "cuda:0".
func (d Device) String() string {
	if d.Kind == CUDA {
		return fmt.Sprintf("cuda:%d", d.Index)
	}
	return string(d.Kind)
}

// MarshalText implements encoding.TextMarshaler.
func (d Device) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Prober discovers the devices of a given kind.
type Prober interface {
	Probe(ctx context.Context, kind Kind) (Device, error)
}

// Booker hands out the process-wide device.
type Booker interface {
	Book(ctx context.Context, kind Kind) (Device, error)
}

// OnceBooker probes once and remembers the outcome for the process lifetime.
type OnceBooker struct {
	prober Prober

	once   sync.Once
	kind   Kind
	device Device
	err    error
}

// NewOnceBooker creates a booker backed by prober.
func NewOnceBooker(prober Prober) *OnceBooker {
	return &OnceBooker{prober: prober}
}

// Book claims a device of the requested kind. Asking for a different kind
// after the first booking is an error; the booked device is never released.
func (b *OnceBooker) Book(ctx context.Context, kind Kind) (Device, error) {
	b.once.Do(func() {
		b.kind = kind
		b.device, b.err = b.prober.Probe(ctx, kind)
		if b.err != nil && !errors.IsCode(b.err, errors.ErrCodeDeviceUnavailable) {
			b.err = errors.DeviceUnavailable(string(kind), b.err)
		}
	})
	if b.err != nil {
		return Device{}, b.err
	}
	if kind != b.kind {
		return Device{}, errors.DeviceUnavailable(string(kind),
			fmt.Errorf("device already booked as %s", b.device))
	}
	return b.device, nil
}

var defaultBooker = NewOnceBooker(SystemProber{})

// Default returns the process-wide booker.
func Default() Booker {
	return defaultBooker
}
