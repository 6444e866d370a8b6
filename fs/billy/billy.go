package billy

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/roncuevas/LocalJSON/fs/core"
)

// FS adapts a billy.Filesystem to core.FS.
type FS struct {
	bfs  billy.Filesystem
	kind core.FSType
}

// NewLocal returns a disk-backed filesystem rooted at root.
// The directory does not need to exist yet; it is created on first write.
func NewLocal(root string) *FS {
	return &FS{bfs: osfs.New(root), kind: core.FSTypeLocal}
}

// NewMemory returns an empty in-memory filesystem.
func NewMemory() *FS {
	return &FS{bfs: memfs.New(), kind: core.FSTypeMemory}
}

// Wrap adapts an existing billy.Filesystem.
func Wrap(bfs billy.Filesystem, kind core.FSType) *FS {
	return &FS{bfs: bfs, kind: kind}
}

// Unwrap returns the underlying billy.Filesystem.
func (f *FS) Unwrap() billy.Filesystem {
	return f.bfs
}

// Root returns the root path of the underlying filesystem.
func (f *FS) Root() string {
	return f.bfs.Root()
}

// normalize converts paths to use forward slashes consistently.
func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// dirEntry wraps fs.FileInfo to implement fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// Stat returns file metadata for the named file.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	return f.bfs.Stat(normalize(name))
}

// ReadDir returns the entries of the named directory sorted by filename.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	// billy returns []fs.FileInfo
	infos, err := f.bfs.ReadDir(normalize(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	return entries, nil
}

// ReadFile reads the named file and returns its contents.
func (f *FS) ReadFile(name string) ([]byte, error) {
	file, err := f.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}

// Exists reports whether the named file or directory exists.
func (f *FS) Exists(name string) (bool, error) {
	_, err := f.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// WriteFile writes data to the named file, creating or truncating it.
func (f *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	file, err := f.bfs.OpenFile(normalize(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// MkdirAll creates a directory named name, along with any necessary parents.
// Directories it creates get perm. osfs ignores the mode it is given, so on
// local disk the mode is applied to each new directory afterwards.
func (f *FS) MkdirAll(name string, perm fs.FileMode) error {
	name = normalize(name)

	var created []string
	if f.kind == core.FSTypeLocal {
		created = f.missingDirs(name)
	}
	if err := f.bfs.MkdirAll(name, perm); err != nil {
		return err
	}
	for _, dir := range created {
		if err := os.Chmod(filepath.Join(f.bfs.Root(), filepath.FromSlash(dir)), perm); err != nil {
			return err
		}
	}
	return nil
}

// missingDirs lists name and its parents that do not exist yet, deepest first.
func (f *FS) missingDirs(name string) []string {
	var missing []string
	for dir := name; dir != "." && dir != "/"; dir = path.Dir(dir) {
		if _, err := f.bfs.Stat(dir); err == nil {
			break
		}
		missing = append(missing, dir)
	}
	return missing
}

// Remove removes the named file or empty directory.
func (f *FS) Remove(name string) error {
	return f.bfs.Remove(normalize(name))
}

// Rename renames (moves) oldpath to newpath.
func (f *FS) Rename(oldpath, newpath string) error {
	return f.bfs.Rename(normalize(oldpath), normalize(newpath))
}

// Chroot returns a filesystem scoped to the given directory.
func (f *FS) Chroot(dir string) (core.FS, error) {
	chrootFS, err := f.bfs.Chroot(normalize(dir))
	if err != nil {
		return nil, err
	}
	return &FS{bfs: chrootFS, kind: f.kind}, nil
}

// Type returns the kind of storage behind the filesystem.
func (f *FS) Type() core.FSType {
	return f.kind
}

// Compile-time interface check.
var _ core.FS = (*FS)(nil)
