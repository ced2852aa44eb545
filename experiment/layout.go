package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/diarkit/diarkit/errors"
)

const (
	ConfigFile = "config.yml"
	ParamsFile = "params.yml"

	trainDir    = "train"
	validateDir = "validate"
	applyDir    = "apply"
	weightsDir  = "weights"
	weightsExt  = ".pt"
)

// ResolveDir expands a leading ~, makes path absolute, follows symlinks and
// requires the result to be an existing directory.
func ResolveDir(path string) (string, error) {
	if path == "" {
		return "", errors.PathNotFound(path, fmt.Errorf("empty path"))
	}
	expanded, err := expandHome(path)
	if err != nil {
		return "", errors.PathNotFound(path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.PathNotFound(path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.PathNotFound(path, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", errors.PathNotFound(path, err)
	}
	if !info.IsDir() {
		return "", errors.PathNotFound(path, fmt.Errorf("%s is not a directory", resolved))
	}
	return resolved, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Name joins a protocol and subset the way artifact directories are named.
func Name(protocol, subset string) string {
	return protocol + "." + subset
}

// TrainDir returns <root>/train/<protocol>.<subset>.
func TrainDir(root, protocol, subset string) string {
	return filepath.Join(root, trainDir, Name(protocol, subset))
}

// ValidateDir returns <train>/validate/<protocol>.<subset>.
func ValidateDir(train, protocol, subset string) string {
	return filepath.Join(train, validateDir, Name(protocol, subset))
}

// ApplyDir returns <validate>/apply/<epoch> with a four-digit epoch.
func ApplyDir(validate string, epoch int) string {
	return filepath.Join(validate, applyDir, fmt.Sprintf("%04d", epoch))
}

// WeightsDir returns <train>/weights.
func WeightsDir(train string) string {
	return filepath.Join(train, weightsDir)
}

// WeightsPath returns <train>/weights/<epoch>.pt with a four-digit epoch.
func WeightsPath(train string, epoch int) string {
	return filepath.Join(WeightsDir(train), fmt.Sprintf("%04d%s", epoch, weightsExt))
}

// RootFromTrainDir recovers <root> from <root>/train/<protocol>.<subset>.
func RootFromTrainDir(train string) string {
	return filepath.Dir(filepath.Dir(filepath.Clean(train)))
}

// TrainDirFromValidateDir recovers <train> from <train>/validate/<protocol>.<subset>.
func TrainDirFromValidateDir(validate string) string {
	return filepath.Dir(filepath.Dir(filepath.Clean(validate)))
}

// Epochs lists the epochs for which <train>/weights holds a checkpoint, in
// ascending order. A missing weights directory yields no epochs.
func Epochs(train string) ([]int, error) {
	entries, err := os.ReadDir(WeightsDir(train))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list weights: %w", err)
	}
	var epochs []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != weightsExt {
			continue
		}
		epoch, err := strconv.Atoi(strings.TrimSuffix(name, weightsExt))
		if err != nil || epoch < 0 {
			continue
		}
		epochs = append(epochs, epoch)
	}
	slices.Sort(epochs)
	return epochs, nil
}
