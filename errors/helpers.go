package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the code of the outermost StoreError in err's chain.
// Returns CodeUnknown if err is nil or carries no StoreError.
//
// Example:
//
//	switch errors.GetCode(err) {
//	case errors.CodeNotFound:
//	case errors.CodeDecodeFailed:
//	}
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	var storeErr StoreError
	if stderrors.As(err, &storeErr) {
		return storeErr.Code()
	}
	return CodeUnknown
}

// HasCode reports whether any StoreError in err's chain carries code.
// Unlike GetCode it looks past the outermost error, so a schema failure
// wrapped in a decode failure matches both codes.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if storeErr, ok := err.(StoreError); ok && storeErr.Code() == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetClassification extracts the classification from err.
// Returns ClassificationPermanent if err is nil or carries no StoreError.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}
	var storeErr StoreError
	if stderrors.As(err, &storeErr) {
		return storeErr.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable returns true if err is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}

// IsNotFound reports whether err means the requested key does not exist.
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}
