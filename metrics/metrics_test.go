package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/roncuevas/LocalJSON/cache"
	"github.com/roncuevas/LocalJSON/internal/storetest"
	"github.com/roncuevas/LocalJSON/watch"
)

var (
	_ cache.Recorder = (*Metrics)(nil)
	_ watch.Recorder = (*Metrics)(nil)
)

func TestMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	// Vec families only appear once a label set exists.
	m.CacheRequests.WithLabelValues("hit").Add(0)
	m.BackendErrors.WithLabelValues("get").Add(0)
	m.WatchEmits.WithLabelValues("true").Add(0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 8)

	require.Panics(t, func() { NewMetrics(reg) })
}

func TestMetrics_CacheRecorder(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	spy := storetest.NewSpy()
	spy.Seed("a.json", []byte(`1`))
	spy.Seed("b.json", []byte(`2`))
	c, err := cache.New(spy,
		cache.WithPolicy(cache.DefaultPolicy().WithMaxEntries(1)),
		cache.WithRecorder(m))
	require.NoError(t, err)
	m.TrackEntries(c.Len)

	_, err = c.Get(ctx, "a.json")
	require.NoError(t, err)
	_, err = c.Get(ctx, "a.json")
	require.NoError(t, err)
	_, err = c.Get(ctx, "b.json")
	require.NoError(t, err)
	require.NoError(t, c.PutRaw(ctx, "b.json", []byte(`2`)))

	spy.FailDeletes(storetest.NewFailing().Err)
	require.Error(t, c.Delete(ctx, "b.json"))

	require.Equal(t, float64(1), testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.CacheEvictions))
	require.Equal(t, float64(1), testutil.ToFloat64(m.DedupSkips))
	require.Equal(t, float64(1), testutil.ToFloat64(m.BackendErrors.WithLabelValues("delete")))
	require.Equal(t, 0, c.Len())

	count, err := testutil.GatherAndCount(reg, "localjson_cache_entries")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMetrics_WatchRecorder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMetrics(prometheus.NewRegistry())

	spy := storetest.NewSpy()
	w := watch.New[int](spy, "n.json", watch.WithInterval(5*time.Millisecond), watch.WithRecorder(m))
	ch := w.Watch(ctx)

	first := <-ch
	require.False(t, first.Present)
	spy.Seed("n.json", []byte(`3`))
	second := <-ch
	require.True(t, second.Present)
	require.Equal(t, 3, second.Value)

	require.Equal(t, float64(1), testutil.ToFloat64(m.WatchEmits.WithLabelValues("false")))
	// Recorded once the send completes, which may trail the receive.
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.WatchEmits.WithLabelValues("true")) == 1
	}, time.Second, time.Millisecond)
	require.GreaterOrEqual(t, testutil.ToFloat64(m.WatchPolls), float64(2))
	require.Equal(t, float64(0), testutil.ToFloat64(m.WatchPollFailures))
}
