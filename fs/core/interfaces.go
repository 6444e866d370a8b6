package core

import (
	"io/fs"
)

// FSType represents the kind of storage behind a filesystem.
type FSType int

const (
	// FSTypeUnknown indicates the filesystem type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates a disk-backed filesystem.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// FS is the filesystem contract a file-backed document store needs.
//
// Paths are slash-separated and relative to the filesystem root.
type FS interface {
	ReadFS
	WriteFS
	ManageFS
	ChrootFS

	// Type returns the underlying filesystem type.
	Type() FSType
}

// ReadFS defines read-only filesystem operations.
type ReadFS interface {
	// Stat returns file metadata. Errors are of type *fs.PathError.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir returns the entries of the named directory sorted by filename.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named file or directory exists.
	// A false result with a non-nil error means existence could not be
	// determined, not that the file is absent.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations.
type WriteFS interface {
	// WriteFile writes data to the named file, creating or truncating it.
	// The parent directory must exist.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// MkdirAll creates a directory along with any necessary parents.
	// It is a no-op when the directory already exists.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines file management operations.
type ManageFS interface {
	// Remove removes the named file or empty directory.
	// If the path does not exist, Remove returns an error wrapping ErrNotExist.
	Remove(name string) error

	// Rename moves oldpath to newpath, replacing newpath if it is a file.
	Rename(oldpath, newpath string) error
}

// ChrootFS defines the ability to create scoped filesystem views.
type ChrootFS interface {
	// Chroot returns a filesystem whose root is dir. Operations on the
	// returned FS cannot reach paths outside dir.
	Chroot(dir string) (FS, error)
}
