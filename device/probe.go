package device

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/diarkit/diarkit/backend"
	"github.com/diarkit/diarkit/errors"
)

const probeTimeout = 10 * time.Second

// SystemProber probes the local machine. CPU always succeeds; CUDA asks
// nvidia-smi for the visible GPUs.
type SystemProber struct {
	// Run executes the probe command. Defaults to backend.Run.
	Run backend.RunFunc
	// LookupEnv looks up environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Probe implements Prober.
func (p SystemProber) Probe(ctx context.Context, kind Kind) (Device, error) {
	switch kind {
	case CPU:
		return Device{Kind: CPU, Name: "cpu"}, nil
	case CUDA:
		return p.probeCUDA(ctx)
	default:
		return Device{}, errors.DeviceUnavailable(string(kind), fmt.Errorf("unsupported device kind"))
	}
}

func (p SystemProber) probeCUDA(ctx context.Context) (Device, error) {
	lookupEnv := p.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	run := p.Run
	if run == nil {
		run = backend.Run
	}

	if visible, ok := lookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		if v := strings.TrimSpace(visible); v == "" || v == "-1" {
			return Device{}, errors.DeviceUnavailable(string(CUDA),
				stderrors.New("no GPU visible (CUDA_VISIBLE_DEVICES is empty)"))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	result, err := run(ctx, backend.Command{
		Binary: "nvidia-smi",
		Args:   []string{"--query-gpu=index,name", "--format=csv,noheader"},
	})
	if err != nil {
		if result != nil {
			if tail := backend.Tail(result.Stderr, 5); tail != "" {
				err = fmt.Errorf("%w: %s", err, tail)
			}
		}
		return Device{}, errors.DeviceUnavailable(string(CUDA), err)
	}

	gpus, err := parseGPUList(result.Stdout)
	if err != nil {
		return Device{}, errors.DeviceUnavailable(string(CUDA), err)
	}
	if len(gpus) == 0 {
		return Device{}, errors.DeviceUnavailable(string(CUDA), stderrors.New("no GPU found"))
	}
	// CUDA renumbers visible devices from zero.
	gpu := gpus[0]
	gpu.Index = 0
	return gpu, nil
}

// parseGPUList parses "index, name" lines as printed by nvidia-smi.
func parseGPUList(out []byte) ([]Device, error) {
	var gpus []Device
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx, name, _ := strings.Cut(line, ",")
		n, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return nil, fmt.Errorf("unexpected nvidia-smi output %q", line)
		}
		gpus = append(gpus, Device{Kind: CUDA, Index: n, Name: strings.TrimSpace(name)})
	}
	return gpus, nil
}
