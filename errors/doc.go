// Package errors provides the typed errors shared by every diarkit package.
// Each AppError carries a machine-readable code, a human-readable message and
// the process exit status the command line reports when the error is fatal.
package errors
