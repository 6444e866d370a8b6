package errors

import "errors"

// WithContext returns a copy of err with one additional context field.
// Existing fields are preserved. A plain error is converted to a
// StoreError with CodeUnknown. Returns nil if err is nil.
//
// Example:
//
//	err = errors.WithContext(err, "key", key)
func WithContext(err error, key string, value interface{}) StoreError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap merges fields into err's context; new fields win.
// Returns nil if err is nil.
func WithContextMap(err error, fields map[string]interface{}) StoreError {
	if err == nil {
		return nil
	}

	base := asStoreError(err)
	merged := base.Context()
	if merged == nil {
		merged = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &storeError{
		code:           base.Code(),
		classification: base.Classification(),
		message:        base.Message(),
		context:        merged,
		cause:          base.Unwrap(),
	}
}

// WithClassification returns a copy of err with the classification overridden.
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) StoreError {
	if err == nil {
		return nil
	}

	base := asStoreError(err)
	return &storeError{
		code:           base.Code(),
		classification: classification,
		message:        base.Message(),
		context:        base.Context(),
		cause:          base.Unwrap(),
	}
}

func asStoreError(err error) StoreError {
	var storeErr StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}
	return &storeError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
