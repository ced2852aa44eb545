// Package experiment describes the on-disk layout of an experiment.
//
// An experiment lives under a root directory holding config.yml. Training,
// validation and inference artifacts are nested below it:
//
//	<root>/config.yml
//	<root>/train/<protocol>.<subset>/weights/0050.pt
//	<root>/train/<protocol>.<subset>/validate/<protocol>.<subset>/params.yml
//	<root>/train/<protocol>.<subset>/validate/<protocol>.<subset>/apply/0050/
package experiment
