// Package billy adapts go-billy filesystems to core.FS.
//
// NewLocal wraps osfs rooted at a directory on disk and NewMemory wraps
// memfs, which makes it the natural test double for the document store:
//
//	fsys := billy.NewMemory()
//	err := fsys.WriteFile("profile.json", []byte(`{"name":"Ada"}`), 0o644)
//
// Unwrap exposes the underlying billy.Filesystem for callers that need it.
package billy
