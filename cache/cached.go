package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/logging"
	"github.com/roncuevas/LocalJSON/store"
)

// Cached decorates a store.Store with a read cache, write deduplication
// and LRU eviction.
//
// The mutex guards only in-memory bookkeeping. It is never held while the
// wrapped store is called, so a slow read on one key does not block hits
// on others.
type Cached struct {
	inner    store.Store
	policy   Policy
	codec    store.Codec
	clock    clockwork.Clock
	logger   *logging.Logger
	recorder Recorder
	started  time.Time

	mu      sync.Mutex
	table   *table
	pending map[string]*pending

	// group coalesces misses when CoalesceMisses is set. Writes forget
	// their key and ClearCache swaps the group, so a miss that starts
	// after either never joins a read that began before it.
	group *singleflight.Group
	stats stats
}

// pending tracks backend reads in flight for one key. gen is bumped by
// every write, delete or invalidation so a read that raced with one of
// them does not repopulate the table with bytes that may be stale.
type pending struct {
	gen  uint64
	refs int
}

// New wraps inner. The policy is validated once here.
func New(inner store.Store, opts ...Option) (*Cached, error) {
	if inner == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "wrapped store is required")
	}

	c := &Cached{
		inner:    inner,
		policy:   DefaultPolicy(),
		codec:    store.DefaultCodec(),
		clock:    clockwork.NewRealClock(),
		logger:   logging.Nop(),
		recorder: NopRecorder{},
		table:    newTable(),
		pending:  make(map[string]*pending),
		group:    new(singleflight.Group),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.policy.Validate(); err != nil {
		return nil, err
	}
	c.logger = c.logger.WithComponent("cache")
	c.started = c.clock.Now()
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(inner store.Store, opts ...Option) *Cached {
	c, err := New(inner, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the bytes at key, from the table when a fresh entry exists.
func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.policy.ReadCache {
		return c.fetch(ctx, key)
	}

	expired := false
	c.mu.Lock()
	now := c.clock.Now()
	if e := c.table.get(key); e != nil {
		if !e.expired(c.policy.TTL, now) {
			c.table.touch(key, now)
			data := clone(e.data)
			c.mu.Unlock()

			c.stats.hits.Add(1)
			c.recorder.Hit(key)
			logging.LogCacheHit(ctx, c.logger, key, len(data))
			return data, nil
		}
		c.table.remove(key)
		expired = true
	}
	p := c.beginLoad(key)
	gen := p.gen
	group := c.group
	c.mu.Unlock()

	reason := "absent"
	if expired {
		reason = "expired"
		c.stats.expirations.Add(1)
		c.recorder.Expired(key)
	}
	c.stats.misses.Add(1)
	c.recorder.Miss(key)
	logging.LogCacheMiss(ctx, c.logger, key, reason)

	data, err := c.load(ctx, group, key)

	c.mu.Lock()
	var evicted []*entry
	if err == nil && p.gen == gen {
		c.table.put(key, clone(data), c.clock.Now())
		evicted = c.table.evict(c.policy.MaxEntries)
	}
	c.endLoad(key, p)
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	c.logEvictions(ctx, evicted)
	return clone(data), nil
}

// GetInto decodes the document at key into v. A decode failure leaves the
// cached bytes in place.
func (c *Cached) GetInto(ctx context.Context, key string, v any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return store.Decode(c.codec, key, data, v)
}

// Put encodes v and writes it through PutRaw. Encoding failures touch
// neither the table nor the wrapped store.
func (c *Cached) Put(ctx context.Context, key string, v any) error {
	data, err := store.Encode(c.codec, key, v)
	if err != nil {
		return err
	}
	return c.PutRaw(ctx, key, data)
}

// PutRaw writes data to key unless write deduplication finds identical,
// unexpired bytes already cached.
func (c *Cached) PutRaw(ctx context.Context, key string, data []byte) error {
	if c.policy.WriteDedup && c.duplicate(key, data) {
		c.stats.dedupSkips.Add(1)
		c.recorder.DedupSkipped(key)
		logging.LogDedup(ctx, c.logger, key, len(data))
		return nil
	}

	c.stats.backendWrites.Add(1)
	if err := c.inner.PutRaw(ctx, key, data); err != nil {
		c.backendFailed(ctx, logging.OpPut, key, err)
		return err
	}
	if !c.policy.Enabled() {
		return nil
	}

	c.mu.Lock()
	c.markStale(key)
	c.table.put(key, clone(data), c.clock.Now())
	evicted := c.table.evict(c.policy.MaxEntries)
	c.mu.Unlock()

	c.logEvictions(ctx, evicted)
	return nil
}

func (c *Cached) duplicate(key string, data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.table.get(key)
	if e == nil || e.expired(c.policy.TTL, c.clock.Now()) {
		return false
	}
	return bytes.Equal(e.data, data)
}

// Exists passes through to the wrapped store.
func (c *Cached) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := c.inner.Exists(ctx, key)
	if err != nil {
		c.backendFailed(ctx, logging.OpExists, key, err)
	}
	return ok, err
}

// Delete removes key from the wrapped store and then from the table,
// whether or not the wrapped store succeeded.
func (c *Cached) Delete(ctx context.Context, key string) error {
	err := c.inner.Delete(ctx, key)
	c.Invalidate(key)
	if err != nil {
		c.backendFailed(ctx, logging.OpDelete, key, err)
	}
	return err
}

// List passes through to the wrapped store.
func (c *Cached) List(ctx context.Context, dir string) ([]string, error) {
	keys, err := c.inner.List(ctx, dir)
	if err != nil {
		c.backendFailed(ctx, logging.OpList, dir, err)
	}
	return keys, err
}

// ClearCache empties the table. The wrapped store is not touched.
func (c *Cached) ClearCache() {
	c.mu.Lock()
	n := c.table.clear()
	for _, p := range c.pending {
		p.gen++
	}
	c.group = new(singleflight.Group)
	c.mu.Unlock()
	c.logger.Debug(context.Background(), "cache cleared", "entries", n)
}

// Invalidate drops the entry for key, if any.
func (c *Cached) Invalidate(key string) {
	c.mu.Lock()
	c.table.remove(key)
	c.markStale(key)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.len()
}

// Keys returns the cached keys, most recently used first.
func (c *Cached) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.keys()
}

// Stats returns a snapshot of the cache counters.
func (c *Cached) Stats() Snapshot {
	return c.stats.snapshot(c.Len(), c.clock.Since(c.started))
}

// Policy returns the policy the cache was built with.
func (c *Cached) Policy() Policy {
	return c.policy
}

// Unwrap returns the wrapped store.
func (c *Cached) Unwrap() store.Store {
	return c.inner
}

// load reads key from the wrapped store, sharing the read with concurrent
// callers when CoalesceMisses is set. A shared read runs detached from any
// one caller's context; each caller stops waiting when its own ctx ends.
func (c *Cached) load(ctx context.Context, group *singleflight.Group, key string) ([]byte, error) {
	if !c.policy.CoalesceMisses {
		return c.fetch(ctx, key)
	}
	shared := context.WithoutCancel(ctx)
	ch := group.DoChan(key, func() (interface{}, error) {
		return c.fetch(shared, key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cached) fetch(ctx context.Context, key string) ([]byte, error) {
	c.stats.backendReads.Add(1)
	data, err := c.inner.Get(ctx, key)
	if err != nil {
		if !errors.IsNotFound(err) {
			c.backendFailed(ctx, logging.OpGet, key, err)
		}
		return nil, err
	}
	return data, nil
}

// beginLoad registers an in-flight read. Callers hold c.mu.
func (c *Cached) beginLoad(key string) *pending {
	p, ok := c.pending[key]
	if !ok {
		p = &pending{}
		c.pending[key] = p
	}
	p.refs++
	return p
}

// endLoad releases an in-flight read. Callers hold c.mu.
func (c *Cached) endLoad(key string, p *pending) {
	p.refs--
	if p.refs == 0 {
		delete(c.pending, key)
	}
}

// markStale invalidates reads in flight for key. Callers hold c.mu.
func (c *Cached) markStale(key string) {
	if p, ok := c.pending[key]; ok {
		p.gen++
	}
	c.group.Forget(key)
}

func (c *Cached) backendFailed(ctx context.Context, op logging.Operation, key string, err error) {
	c.stats.backendErrors.Add(1)
	c.recorder.BackendError(string(op))
	logging.LogBackendFailure(ctx, c.logger, op, key, err)
}

func (c *Cached) logEvictions(ctx context.Context, evicted []*entry) {
	for _, e := range evicted {
		c.stats.evictions.Add(1)
		c.recorder.Evicted(e.key)
		logging.LogEviction(ctx, c.logger, e.key, len(e.data), "lru")
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

var _ store.Store = (*Cached)(nil)
