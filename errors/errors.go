package errors

// StoreError extends the standard error interface with the structured
// information a document store reports.
type StoreError interface {
	error

	// Code returns the error code identifying the type of failure.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable message without the cause.
	Message() string

	// Context returns a copy of the attached metadata, or nil.
	Context() map[string]interface{}

	// Unwrap returns the wrapped cause for errors.Is and errors.As.
	Unwrap() error
}
