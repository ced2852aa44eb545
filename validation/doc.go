// Package validation checks assembled option and configuration structs
// against their `validate` struct tags.
//
// Field names in error messages come from the `flag` tag when present, so a
// violation reads the way the user typed the option:
//
//	type ApplyConfig struct {
//	    BatchSize int `flag:"--batch" validate:"gte=1"`
//	}
//	err := validation.Validate(cfg) // "--batch: must be greater than or equal to 1"
package validation
