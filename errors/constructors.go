package errors

import "fmt"

// New creates a StoreError with the given code and message.
//
// Example:
//
//	err := errors.New(errors.CodeInvalidInput, "key must not be empty")
func New(code ErrorCode, message string) StoreError {
	return &storeError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates a StoreError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) StoreError {
	return New(code, fmt.Sprintf(format, args...))
}

// NotFound returns the error every store reports for a missing key.
func NotFound(key string) StoreError {
	return &storeError{
		code:           CodeNotFound,
		classification: ClassificationPermanent,
		message:        "file not found: " + key,
		context:        map[string]interface{}{"key": key},
	}
}
