package logger

import (
	"fmt"
	"time"
)

// Field keys shared across components.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldTask      = "task"
	FieldMode      = "mode"
	FieldProtocol  = "protocol"
	FieldSubset    = "subset"
	FieldDevice    = "device"
	FieldModel     = "model"
	FieldPath      = "path"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldElapsed   = "elapsed_ms"
)

// Fields builds a field map from alternating key-value pairs. Non-string
// keys and a trailing key without a value are dropped. fmt.Stringer values
// are stored as their string form.
//
//	log.Info("training", logger.Fields(logger.FieldTask, task, "epochs", 100))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		if s, ok := kvs[i+1].(fmt.Stringer); ok {
			m[key] = s.String()
			continue
		}
		m[key] = kvs[i+1]
	}
	return m
}

// Failure returns the fields for a failed operation.
func Failure(op string, err error) map[string]any {
	return map[string]any{FieldOperation: op, FieldError: err.Error()}
}

// Elapsed returns the fields for an operation that took d.
func Elapsed(op string, d time.Duration) map[string]any {
	return map[string]any{FieldOperation: op, FieldElapsed: d.Milliseconds()}
}
