package errors

// ErrorClassification indicates whether an error is worth retrying.
type ErrorClassification string

const (
	// ClassificationRetryable indicates a temporary failure that may succeed on retry.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates a failure that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error codes to their default classification.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeStorage:     ClassificationRetryable,
	CodeTimeout:     ClassificationRetryable,
	CodeUnavailable: ClassificationRetryable,

	CodeNotFound:          ClassificationPermanent,
	CodeDecodeFailed:      ClassificationPermanent,
	CodeEncodeFailed:      ClassificationPermanent,
	CodeSchemaFailed:      ClassificationPermanent,
	CodeWriteFailed:       ClassificationPermanent,
	CodeDeleteFailed:      ClassificationPermanent,
	CodeDirectoryNotFound: ClassificationPermanent,
	CodeForbidden:         ClassificationPermanent,
	CodeInvalidInput:      ClassificationPermanent,
	CodeInvalidConfig:     ClassificationPermanent,
	CodeInternal:          ClassificationPermanent,
	CodeUnknown:           ClassificationPermanent,
}

// getDefaultClassification returns the default classification for a code.
// Unknown codes are permanent.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
