package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps err with a code and message while preserving it as the cause.
// If err already carries a StoreError, its classification is kept.
// Returns nil if err is nil.
//
// Example:
//
//	if err := fsys.WriteFile(name, data, 0o644); err != nil {
//	    return errors.Wrap(err, errors.CodeWriteFailed, "failed to write document")
//	}
func Wrap(err error, code ErrorCode, message string) StoreError {
	if err == nil {
		return nil
	}
	return &storeError{
		code:           code,
		classification: inheritClassification(err, code),
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) StoreError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps err and attaches context fields in one step.
// The map is copied. Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.CodeDecodeFailed, "failed to decode document",
//	    map[string]interface{}{"key": key, "type": fmt.Sprintf("%T", v)})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) StoreError {
	if err == nil {
		return nil
	}
	return &storeError{
		code:           code,
		classification: inheritClassification(err, code),
		message:        message,
		context:        copyContext(ctx),
		cause:          err,
	}
}

func inheritClassification(err error, code ErrorCode) ErrorClassification {
	var storeErr StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Classification()
	}
	return getDefaultClassification(code)
}
