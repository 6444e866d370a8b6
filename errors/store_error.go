package errors

import "fmt"

// storeError is the concrete StoreError. Construction goes through the
// package functions so that classification is always set.
type storeError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *storeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *storeError) Code() ErrorCode                     { return e.code }
func (e *storeError) Classification() ErrorClassification { return e.classification }
func (e *storeError) Message() string                     { return e.message }
func (e *storeError) Unwrap() error                       { return e.cause }

// Context returns a copy of the context map so the error stays immutable.
func (e *storeError) Context() map[string]interface{} {
	return copyContext(e.context)
}

func copyContext(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
