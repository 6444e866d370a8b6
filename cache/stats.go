package cache

import (
	"sync/atomic"
	"time"
)

// Recorder receives cache events, typically to export them as metrics.
// Implementations must be safe for concurrent use and must not block.
type Recorder interface {
	Hit(key string)
	Miss(key string)
	Expired(key string)
	Evicted(key string)
	DedupSkipped(key string)
	BackendError(op string)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) Hit(string)          {}
func (NopRecorder) Miss(string)         {}
func (NopRecorder) Expired(string)      {}
func (NopRecorder) Evicted(string)      {}
func (NopRecorder) DedupSkipped(string) {}
func (NopRecorder) BackendError(string) {}

// Snapshot is a point-in-time copy of a Cached store's counters.
type Snapshot struct {
	Hits          uint64
	Misses        uint64
	Expirations   uint64
	Evictions     uint64
	DedupSkips    uint64
	BackendReads  uint64
	BackendWrites uint64
	BackendErrors uint64
	Entries       int
	HitRate       float64
	Uptime        time.Duration
}

// stats holds the counters behind Snapshot.
type stats struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	expirations   atomic.Uint64
	evictions     atomic.Uint64
	dedupSkips    atomic.Uint64
	backendReads  atomic.Uint64
	backendWrites atomic.Uint64
	backendErrors atomic.Uint64
}

func (s *stats) snapshot(entries int, uptime time.Duration) Snapshot {
	snap := Snapshot{
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		Expirations:   s.expirations.Load(),
		Evictions:     s.evictions.Load(),
		DedupSkips:    s.dedupSkips.Load(),
		BackendReads:  s.backendReads.Load(),
		BackendWrites: s.backendWrites.Load(),
		BackendErrors: s.backendErrors.Load(),
		Entries:       entries,
		Uptime:        uptime,
	}
	if total := snap.Hits + snap.Misses; total > 0 {
		snap.HitRate = float64(snap.Hits) / float64(total)
	}
	return snap
}
