package cache

import (
	"container/list"
	"time"
)

// entry is a cached document. Only the table holds entries; callers
// receive copies of data.
type entry struct {
	key          string
	data         []byte
	createdAt    time.Time
	lastAccessed time.Time
}

// expired reports whether the entry has outlived ttl as of now.
// A nil ttl never expires.
func (e *entry) expired(ttl *time.Duration, now time.Time) bool {
	if ttl == nil {
		return false
	}
	return now.Sub(e.createdAt) > *ttl
}

// table is the entry table. The recency list is ordered by lastAccessed,
// most recent at the front, so eviction pops from the back.
//
// table is not safe for concurrent use; Cached guards it with its mutex.
type table struct {
	items map[string]*list.Element
	order *list.List
}

func newTable() *table {
	return &table{
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// get returns the entry for key without touching it.
func (t *table) get(key string) *entry {
	if elem, ok := t.items[key]; ok {
		return elem.Value.(*entry)
	}
	return nil
}

// touch marks key as accessed at now.
func (t *table) touch(key string, now time.Time) {
	if elem, ok := t.items[key]; ok {
		elem.Value.(*entry).lastAccessed = now
		t.order.MoveToFront(elem)
	}
}

// put inserts or replaces the entry for key with fresh timestamps.
func (t *table) put(key string, data []byte, now time.Time) {
	e := &entry{key: key, data: data, createdAt: now, lastAccessed: now}
	if elem, ok := t.items[key]; ok {
		elem.Value = e
		t.order.MoveToFront(elem)
		return
	}
	t.items[key] = t.order.PushFront(e)
}

// remove deletes key and reports whether it was present.
func (t *table) remove(key string) bool {
	elem, ok := t.items[key]
	if !ok {
		return false
	}
	t.order.Remove(elem)
	delete(t.items, key)
	return true
}

func (t *table) clear() int {
	n := len(t.items)
	t.items = make(map[string]*list.Element)
	t.order.Init()
	return n
}

func (t *table) len() int {
	return len(t.items)
}

// evict removes least recently used entries until at most max remain and
// returns them oldest first. A nil max is a no-op.
func (t *table) evict(max *int) []*entry {
	if max == nil || len(t.items) <= *max {
		return nil
	}
	evicted := make([]*entry, 0, len(t.items)-*max)
	for len(t.items) > *max {
		elem := t.order.Back()
		if elem == nil {
			break
		}
		e := elem.Value.(*entry)
		t.order.Remove(elem)
		delete(t.items, e.key)
		evicted = append(evicted, e)
	}
	return evicted
}

// keys returns the cached keys, most recently used first.
func (t *table) keys() []string {
	keys := make([]string, 0, len(t.items))
	for elem := t.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry).key)
	}
	return keys
}
