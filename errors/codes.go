package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Command line errors
const (
	// ErrCodeUsage indicates the arguments do not match the command grammar.
	ErrCodeUsage ErrorCode = "USAGE"
	// ErrCodeInvalidInput indicates an option value is out of range or malformed.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Experiment errors
const (
	// ErrCodePathNotFound indicates a required directory or file does not exist.
	ErrCodePathNotFound ErrorCode = "PATH_NOT_FOUND"
	// ErrCodeConfiguration indicates a required setting has no value and no fallback.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
)

// Resource errors
const (
	// ErrCodeRemoteFetch indicates a pre-trained model could not be fetched.
	ErrCodeRemoteFetch ErrorCode = "REMOTE_FETCH"
	// ErrCodeDeviceUnavailable indicates the requested compute device could not be booked.
	ErrCodeDeviceUnavailable ErrorCode = "DEVICE_UNAVAILABLE"
	// ErrCodeExternalService indicates the compute backend failed.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeTimeout indicates an operation ran out of time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)
