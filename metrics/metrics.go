// Package metrics exports cache and watch events to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "localjson"

// Metrics holds all Prometheus metrics for a store. It implements both
// cache.Recorder and watch.Recorder.
type Metrics struct {
	CacheRequests    *prometheus.CounterVec
	CacheExpirations prometheus.Counter
	CacheEvictions   prometheus.Counter
	DedupSkips       prometheus.Counter
	BackendErrors    *prometheus.CounterVec

	WatchPolls        prometheus.Counter
	WatchEmits        *prometheus.CounterVec
	WatchPollFailures prometheus.Counter

	reg prometheus.Registerer
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_requests_total",
		Help:      "Cache reads by result (hit or miss)",
	}, []string{"result"})

	cacheExpirations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_expirations_total",
		Help:      "Cache entries dropped on read because their TTL elapsed",
	})

	cacheEvictions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_evictions_total",
		Help:      "Cache entries evicted by the LRU bound",
	})

	dedupSkips := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_dedup_skips_total",
		Help:      "Writes skipped because the cached bytes already matched",
	})

	backendErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "backend_errors_total",
		Help:      "Failed calls into the wrapped store by operation",
	}, []string{"operation"})

	watchPolls := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "watch_polls_total",
		Help:      "Change stream polls",
	})

	watchEmits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "watch_updates_total",
		Help:      "Change stream updates delivered, by whether a value was present",
	}, []string{"present"})

	watchPollFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "watch_poll_failures_total",
		Help:      "Change stream polls skipped because the read failed",
	})

	reg.MustRegister(cacheRequests, cacheExpirations, cacheEvictions, dedupSkips,
		backendErrors, watchPolls, watchEmits, watchPollFailures)

	return &Metrics{
		CacheRequests:     cacheRequests,
		CacheExpirations:  cacheExpirations,
		CacheEvictions:    cacheEvictions,
		DedupSkips:        dedupSkips,
		BackendErrors:     backendErrors,
		WatchPolls:        watchPolls,
		WatchEmits:        watchEmits,
		WatchPollFailures: watchPollFailures,
		reg:               reg,
	}
}

// TrackEntries registers a gauge reporting the current cache size.
func (m *Metrics) TrackEntries(size func() int) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "cache_entries",
		Help:      "Entries currently held in the cache table",
	}, func() float64 {
		return float64(size())
	}))
}

func (m *Metrics) Hit(string)          { m.CacheRequests.WithLabelValues("hit").Inc() }
func (m *Metrics) Miss(string)         { m.CacheRequests.WithLabelValues("miss").Inc() }
func (m *Metrics) Expired(string)      { m.CacheExpirations.Inc() }
func (m *Metrics) Evicted(string)      { m.CacheEvictions.Inc() }
func (m *Metrics) DedupSkipped(string) { m.DedupSkips.Inc() }

func (m *Metrics) BackendError(op string) {
	m.BackendErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) Polled(string)     { m.WatchPolls.Inc() }
func (m *Metrics) PollFailed(string) { m.WatchPollFailures.Inc() }

func (m *Metrics) Emitted(_ string, present bool) {
	m.WatchEmits.WithLabelValues(strconv.FormatBool(present)).Inc()
}
