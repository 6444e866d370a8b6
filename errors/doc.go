// Package errors provides the structured error type returned by every
// document store in this module.
//
// Each error carries a code identifying what went wrong, a retry
// classification, an optional set of context fields (typically the
// document key), and the underlying cause. Errors remain compatible with
// the standard library: errors.Is and errors.As see through the wrapping,
// so callers can still match fs.ErrNotExist or a backend's own sentinel.
//
// # Store error taxonomy
//
// The codes map onto the failure classes a store can produce:
//
//   - CodeNotFound: the key does not exist. Never cached.
//   - CodeDecodeFailed: bytes exist but do not decode into the requested type.
//   - CodeEncodeFailed: a value could not be serialized. Nothing was written.
//   - CodeWriteFailed, CodeDeleteFailed, CodeDirectoryNotFound, CodeForbidden,
//     CodeStorage: backend failures, propagated verbatim by caching layers.
//
// # Usage
//
//	data, err := s.Get(ctx, "settings/profile.json")
//	if errors.IsNotFound(err) {
//	    // first run
//	}
//
//	if errors.GetCode(err) == errors.CodeDecodeFailed {
//	    // stored document has an old shape
//	}
//
// Backend failures that are worth retrying (network hiccups against an
// object store, for instance) report IsRetryable(err) == true. No layer in
// this module retries on its own; that decision belongs to the caller.
package errors
