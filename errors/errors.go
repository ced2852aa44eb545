package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// ExitCode is the process exit status reported for this error.
	ExitCode int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// --- Common Error Constructors ---

// Usage creates a new AppError for arguments that do not match the grammar.
func Usage(reason string) *AppError {
	return &AppError{
		Code: ErrCodeUsage, Message: reason,
		ExitCode: ExitUsage,
	}
}

// InvalidInput creates a new AppError for an invalid option value.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		ExitCode: ExitUsage, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		ExitCode: ExitUsage,
	}
}

// PathNotFound creates a new AppError for a path that must exist but does not.
func PathNotFound(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePathNotFound, Message: fmt.Sprintf("Path not found: %s", path),
		ExitCode: ExitFailure,
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// Configuration creates a new AppError for a setting that has no value and
// no fallback. The option names the command line flag that would supply it.
func Configuration(option, message string) *AppError {
	return &AppError{
		Code: ErrCodeConfiguration, Message: message,
		ExitCode: ExitFailure,
		Details: map[string]any{"option": option},
	}
}

// RemoteFetch creates a new AppError for a pre-trained model that could not
// be fetched from the model hub.
func RemoteFetch(model string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRemoteFetch,
		Message: fmt.Sprintf("Could not load %q model from the model hub. The following error was raised:\n\n%v\n",
			model, cause),
		ExitCode: ExitFailure,
		Details: map[string]any{"model": model}, Cause: cause,
	}
}

// DeviceUnavailable creates a new AppError for a compute device that could not be booked.
func DeviceUnavailable(device string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDeviceUnavailable, Message: fmt.Sprintf("Unable to book %s device.", device),
		ExitCode: ExitFailure,
		Details: map[string]any{"device": device}, Cause: cause,
	}
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("The %s operation took too long.", operation),
		ExitCode: ExitFailure,
		Details: map[string]any{"operation": operation},
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "Unexpected error",
		ExitCode: ExitFailure, Cause: cause,
	}
}

// ExternalServiceError creates a new AppError for a failure of an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error.", service),
		ExitCode: ExitFailure,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// ExitCode returns the process exit status for err.
// Errors that are not AppErrors map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if appErr, ok := AsAppError(err); ok && appErr.ExitCode != 0 {
		return appErr.ExitCode
	}
	return ExitFailure
}

// Describe returns the diagnostic printed on the error stream for err.
func Describe(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	if appErr.Cause != nil && appErr.Code != ErrCodeRemoteFetch {
		return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
	}
	return appErr.Message
}
