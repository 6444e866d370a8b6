// Package storetest provides store doubles and a conformance suite shared
// by every store.Store implementation in this module.
package storetest

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/store"
)

// Counts is a snapshot of the calls a Spy has served.
type Counts struct {
	Gets    int
	Puts    int
	Deletes int
	Exists  int
	Lists   int
}

// Spy is a map-backed store that counts backend calls and can inject
// failures. It is safe for concurrent use.
type Spy struct {
	mu     sync.Mutex
	docs   map[string][]byte
	counts Counts
	codec  store.Codec

	getErr    error
	putErr    error
	deleteErr error

	// BeforeGet, when set, runs at the start of every Get outside the
	// spy's lock. Tests use it to block or observe backend reads.
	BeforeGet func(key string)
	// AfterGet runs after a successful Get has copied the document,
	// again outside the lock.
	AfterGet func(key string)
	// BeforePut is the PutRaw counterpart of BeforeGet.
	BeforePut func(key string)
}

// NewSpy returns an empty Spy.
func NewSpy() *Spy {
	return &Spy{docs: make(map[string][]byte), codec: store.DefaultCodec()}
}

// Seed stores data at key without counting a write.
func (s *Spy) Seed(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), data...)
}

// Raw returns the stored bytes at key without counting a read.
func (s *Spy) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[key]
	return append([]byte(nil), data...), ok
}

// Counts returns the current call counts.
func (s *Spy) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// Reset zeroes the call counts.
func (s *Spy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = Counts{}
}

// FailGets makes every Get return err until cleared with nil.
func (s *Spy) FailGets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailPuts makes every PutRaw return err until cleared with nil.
func (s *Spy) FailPuts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// FailDeletes makes every Delete return err until cleared with nil.
func (s *Spy) FailDeletes(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

func (s *Spy) Get(_ context.Context, key string) ([]byte, error) {
	if hook := s.BeforeGet; hook != nil {
		hook(key)
	}

	s.mu.Lock()
	s.counts.Gets++
	if s.getErr != nil {
		err := s.getErr
		s.mu.Unlock()
		return nil, err
	}
	data, ok := s.docs[key]
	if !ok {
		s.mu.Unlock()
		return nil, errors.NotFound(key)
	}
	data = append([]byte(nil), data...)
	s.mu.Unlock()

	if hook := s.AfterGet; hook != nil {
		hook(key)
	}
	return data, nil
}

func (s *Spy) GetInto(ctx context.Context, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return store.Decode(s.codec, key, data, v)
}

func (s *Spy) Put(ctx context.Context, key string, v any) error {
	data, err := store.Encode(s.codec, key, v)
	if err != nil {
		return err
	}
	return s.PutRaw(ctx, key, data)
}

func (s *Spy) PutRaw(_ context.Context, key string, data []byte) error {
	if hook := s.BeforePut; hook != nil {
		hook(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.docs[key] = append([]byte(nil), data...)
	return nil
}

func (s *Spy) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Exists++
	_, ok := s.docs[key]
	return ok, nil
}

func (s *Spy) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.docs[key]; !ok {
		return errors.WithContext(errors.New(errors.CodeDeleteFailed, "failed to delete document"), "key", key)
	}
	delete(s.docs, key)
	return nil
}

func (s *Spy) List(_ context.Context, dir string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Lists++

	prefix := ""
	if dir != "" {
		prefix = strings.TrimSuffix(dir, "/") + "/"
	}

	keys := []string{}
	found := prefix == ""
	for key := range s.docs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		found = true
		rest := strings.TrimPrefix(key, prefix)
		if strings.Contains(rest, "/") || path.Ext(rest) != store.Extension {
			continue
		}
		keys = append(keys, key)
	}
	if !found {
		return nil, errors.WithContext(errors.New(errors.CodeDirectoryNotFound, "directory not found: "+dir), "dir", dir)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ store.Store = (*Spy)(nil)
