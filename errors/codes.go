package errors

// ErrorCode represents a specific store failure.
// Codes are strings so they read well in logs and serialize naturally.
type ErrorCode string

const (
	// Document errors.

	// CodeNotFound indicates the requested key does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeDecodeFailed indicates stored bytes could not be decoded into the requested type.
	CodeDecodeFailed ErrorCode = "DECODE_FAILED"

	// CodeEncodeFailed indicates a value could not be serialized.
	CodeEncodeFailed ErrorCode = "ENCODE_FAILED"

	// CodeSchemaFailed indicates a document failed schema validation.
	CodeSchemaFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"

	// Backend errors.

	// CodeWriteFailed indicates the backend could not persist a document.
	CodeWriteFailed ErrorCode = "WRITE_FAILED"

	// CodeDeleteFailed indicates the backend could not remove a document.
	CodeDeleteFailed ErrorCode = "DELETE_FAILED"

	// CodeDirectoryNotFound indicates a listed directory does not exist.
	CodeDirectoryNotFound ErrorCode = "DIRECTORY_NOT_FOUND"

	// CodeForbidden indicates the backend denied access.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeStorage indicates a transient backend failure (network, remote service).
	CodeStorage ErrorCode = "STORAGE_ERROR"

	// CodeTimeout indicates an operation exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnavailable indicates the backend is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Caller errors.

	// CodeInvalidInput indicates a malformed key or argument.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates an invalid policy or backend configuration.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// System errors.

	// CodeInternal indicates an internal error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)
