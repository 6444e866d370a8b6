package store

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/fs/billy"
	"github.com/roncuevas/LocalJSON/fs/core"
)

// Extension is the suffix List uses to recognise documents.
const Extension = ".json"

// FileStore stores each document as a file inside a core.FS.
type FileStore struct {
	fsys core.FS
	opts options

	// mu guards fsys and is shared with namespaces; memfs is not safe
	// for concurrent mutation.
	mu  *sync.RWMutex
	seq *atomic.Uint64
}

// NewFileStore returns a store over fsys.
func NewFileStore(fsys core.FS, opts ...Option) *FileStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.WithComponent("store").With("fs", fsys.Type().String())
	return &FileStore{fsys: fsys, opts: o, mu: new(sync.RWMutex), seq: new(atomic.Uint64)}
}

// NewLocal returns a store rooted at the directory root, creating it if needed.
func NewLocal(root string, opts ...Option) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "root directory is required")
	}
	fsys := billy.NewLocal(root)
	if err := fsys.MkdirAll(".", 0o755); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeDirectoryNotFound, "cannot create root directory",
			map[string]interface{}{"root": root})
	}
	return NewFileStore(fsys, opts...), nil
}

// NewMemory returns a store over an empty in-memory filesystem.
func NewMemory(opts ...Option) *FileStore {
	return NewFileStore(billy.NewMemory(), opts...)
}

// FS returns the underlying filesystem.
func (s *FileStore) FS() core.FS {
	return s.fsys
}

// Namespace returns a store whose keys resolve inside dir. The directory
// is created if missing, and keys of the returned store cannot escape it.
func (s *FileStore) Namespace(dir string) (*FileStore, error) {
	clean, err := CleanKey(dir)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fsys.MkdirAll(clean, s.opts.dirPerm); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeWriteFailed, "cannot create namespace",
			map[string]interface{}{"namespace": clean})
	}
	scoped, err := s.fsys.Chroot(clean)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeStorage, "cannot scope namespace",
			map[string]interface{}{"namespace": clean})
	}

	opts := s.opts
	opts.logger = s.opts.logger.With("namespace", clean)
	return &FileStore{fsys: scoped, opts: opts, mu: s.mu, seq: s.seq}, nil
}

// Codec returns the codec used by GetInto and Put.
func (s *FileStore) Codec() Codec {
	return s.opts.codec
}

// CleanKey normalizes key and rejects keys that are empty, absolute or
// escape the store root.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New(errors.CodeInvalidInput, "key must not be empty")
	}
	k := strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(k, "/") {
		return "", errors.WithContext(errors.New(errors.CodeInvalidInput, "key must be relative"), "key", key)
	}
	k = path.Clean(k)
	if k == "." || k == ".." || strings.HasPrefix(k, "../") {
		return "", errors.WithContext(errors.New(errors.CodeInvalidInput, "key escapes the store root"), "key", key)
	}
	return k, nil
}

// Get returns the raw bytes stored at key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "read cancelled")
	}

	s.mu.RLock()
	data, err := s.fsys.ReadFile(name)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, core.ErrNotExist) {
			return nil, errors.WrapWithContext(err, errors.CodeNotFound, "file not found: "+key,
				map[string]interface{}{"key": key})
		}
		return nil, errors.WrapWithContext(err, errors.CodeStorage, "failed to read document",
			map[string]interface{}{"key": key})
	}
	return data, nil
}

// GetInto decodes the document at key into v.
func (s *FileStore) GetInto(ctx context.Context, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return Decode(s.opts.codec, key, data, v)
}

// Put encodes v and writes it to key.
func (s *FileStore) Put(ctx context.Context, key string, v any) error {
	data, err := Encode(s.opts.codec, key, v)
	if err != nil {
		return err
	}
	return s.PutRaw(ctx, key, data)
}

// PutRaw writes data to key, creating parent directories. The document is
// written to a sibling temporary file and renamed into place so readers
// never observe a partial write.
func (s *FileStore) PutRaw(ctx context.Context, key string, data []byte) error {
	name, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "write cancelled")
	}

	tmp := fmt.Sprintf("%s.%d.tmp", name, s.seq.Add(1))

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := path.Dir(name); dir != "." {
		if err := s.fsys.MkdirAll(dir, s.opts.dirPerm); err != nil {
			return errors.WrapWithContext(err, errors.CodeWriteFailed, "failed to create parent directory",
				map[string]interface{}{"key": key, "dir": dir})
		}
	}
	if err := s.fsys.WriteFile(tmp, data, s.opts.filePerm); err != nil {
		_ = s.fsys.Remove(tmp)
		return errors.WrapWithContext(err, errors.CodeWriteFailed, "failed to write document",
			map[string]interface{}{"key": key})
	}
	if err := s.fsys.Rename(tmp, name); err != nil {
		_ = s.fsys.Remove(tmp)
		return errors.WrapWithContext(err, errors.CodeWriteFailed, "failed to replace document",
			map[string]interface{}{"key": key})
	}

	s.opts.logger.Debug(ctx, "document written", "key", name, "size", len(data))
	return nil
}

// Exists reports whether key names an existing file or directory.
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	name, err := CleanKey(key)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	ok, err := s.fsys.Exists(name)
	s.mu.RUnlock()
	if err != nil {
		return false, errors.WrapWithContext(err, errors.CodeStorage, "failed to stat document",
			map[string]interface{}{"key": key})
	}
	return ok, nil
}

// Delete removes the document at key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	name, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "delete cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.fsys.Stat(name)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeDeleteFailed, "failed to delete document",
			map[string]interface{}{"key": key})
	}
	if info.IsDir() {
		return errors.WithContext(errors.New(errors.CodeDeleteFailed, "key names a directory"), "key", key)
	}
	if err := s.fsys.Remove(name); err != nil {
		return errors.WrapWithContext(err, errors.CodeDeleteFailed, "failed to delete document",
			map[string]interface{}{"key": key})
	}

	s.opts.logger.Debug(ctx, "document deleted", "key", name)
	return nil
}

// List returns the sorted keys of the .json documents directly inside dir.
// Keys are prefixed with dir + "/" unless dir is empty.
func (s *FileStore) List(ctx context.Context, dir string) ([]string, error) {
	name := "."
	if strings.TrimSpace(dir) != "" {
		cleaned, err := CleanKey(dir)
		if err != nil {
			return nil, err
		}
		name = cleaned
	}

	s.mu.RLock()
	entries, err := s.fsys.ReadDir(name)
	s.mu.RUnlock()
	if err != nil {
		// An untouched root simply holds no documents yet.
		if name == "." && errors.Is(err, core.ErrNotExist) {
			return []string{}, nil
		}
		return nil, errors.WrapWithContext(err, errors.CodeDirectoryNotFound, "directory not found: "+dir,
			map[string]interface{}{"dir": dir})
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != Extension {
			continue
		}
		if name == "." {
			keys = append(keys, e.Name())
		} else {
			keys = append(keys, name+"/"+e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var _ Store = (*FileStore)(nil)
