package watch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/internal/storetest"
	"github.com/roncuevas/LocalJSON/store"
	"github.com/roncuevas/LocalJSON/watch"
)

const interval = 10 * time.Millisecond

type item struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// collector drains a watch channel in the background.
type collector struct {
	mu      sync.Mutex
	updates []watch.Update[item]
	done    chan struct{}
}

func collect(ch <-chan watch.Update[item]) *collector {
	c := &collector{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		for u := range ch {
			c.mu.Lock()
			c.updates = append(c.updates, u)
			c.mu.Unlock()
		}
	}()
	return c
}

func (c *collector) snapshot() []watch.Update[item] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]watch.Update[item](nil), c.updates...)
}

func (c *collector) waitFor(t *testing.T, n int) []watch.Update[item] {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(c.snapshot()) >= n
	}, 5*time.Second, time.Millisecond)
	return c.snapshot()
}

func present(v item) watch.Update[item] {
	return watch.Update[item]{Value: v, Present: true}
}

func absent() watch.Update[item] {
	return watch.Update[item]{}
}

func TestWatch_InitialValue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := store.NewMemory()
	require.NoError(t, s.Put(ctx, "watch.json", item{ID: 1, Value: "a"}))

	first := <-watch.Changes[item](ctx, s, "watch.json", interval)
	assert.Equal(t, present(item{ID: 1, Value: "a"}), first)
}

func TestWatch_InitialAbsent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := <-watch.Changes[item](ctx, store.NewMemory(), "missing.json", interval)
	assert.Equal(t, absent(), first)
}

func TestWatch_NoEmissionWhenUnchanged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := store.NewMemory()
	require.NoError(t, s.Put(ctx, "watch.json", item{ID: 1, Value: "a"}))

	c := collect(watch.Changes[item](ctx, s, "watch.json", interval))
	c.waitFor(t, 1)
	time.Sleep(10 * interval)

	assert.Len(t, c.snapshot(), 1)
}

func TestWatch_AbsentStaysQuiet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := collect(watch.Changes[item](ctx, store.NewMemory(), "missing.json", interval))
	c.waitFor(t, 1)
	time.Sleep(10 * interval)

	assert.Equal(t, []watch.Update[item]{absent()}, c.snapshot())
}

func TestWatch_Transitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := store.NewMemory()

	c := collect(watch.Changes[item](ctx, s, "watch.json", interval))
	c.waitFor(t, 1)

	require.NoError(t, s.Put(ctx, "watch.json", item{ID: 1, Value: "a"}))
	c.waitFor(t, 2)

	require.NoError(t, s.Put(ctx, "watch.json", item{ID: 1, Value: "b"}))
	c.waitFor(t, 3)

	require.NoError(t, s.Delete(ctx, "watch.json"))
	got := c.waitFor(t, 4)

	assert.Equal(t, []watch.Update[item]{
		absent(),
		present(item{ID: 1, Value: "a"}),
		present(item{ID: 1, Value: "b"}),
		absent(),
	}, got)
}

func TestWatch_ByteComparison(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := store.NewMemory()
	require.NoError(t, s.PutRaw(ctx, "watch.json", []byte(`{"id":1,"value":"a"}`)))

	c := collect(watch.Changes[item](ctx, s, "watch.json", interval))
	c.waitFor(t, 1)

	// Same value, different bytes.
	require.NoError(t, s.PutRaw(ctx, "watch.json", []byte(`{"value":"a","id":1}`)))
	got := c.waitFor(t, 2)
	assert.Equal(t, got[0], got[1])
}

func TestWatch_DecodeFailureEmitsAbsent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := store.NewMemory()
	require.NoError(t, s.PutRaw(ctx, "watch.json", []byte(`not json`)))

	c := collect(watch.Changes[item](ctx, s, "watch.json", interval))
	c.waitFor(t, 1)

	require.NoError(t, s.Put(ctx, "watch.json", item{ID: 2, Value: "ok"}))
	got := c.waitFor(t, 2)

	assert.Equal(t, []watch.Update[item]{absent(), present(item{ID: 2, Value: "ok"})}, got)
}

func TestWatch_CancellationClosesChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := store.NewMemory()
	require.NoError(t, s.Put(ctx, "watch.json", item{ID: 1}))

	ch := watch.Changes[item](ctx, s, "watch.json", interval)
	<-ch
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "no updates after cancellation")
	case <-time.After(2 * interval):
		t.Fatal("channel not closed within one poll interval of cancellation")
	}

	// Writes after cancellation are never observed.
	require.NoError(t, s.Put(context.Background(), "watch.json", item{ID: 2}))
	time.Sleep(5 * interval)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestWatch_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := <-watch.Changes[item](ctx, store.NewMemory(), "watch.json", interval)
	assert.False(t, ok)
}

func TestWatch_TransientErrorsSkipPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	spy := storetest.NewSpy()
	spy.Seed("watch.json", []byte(`{"id":7,"value":"x"}`))
	spy.FailGets(errors.New(errors.CodeStorage, "flaky disk"))

	rec := &countingRecorder{}
	w := watch.New[item](spy, "watch.json", watch.WithInterval(interval), watch.WithRecorder(rec))
	c := collect(w.Watch(ctx))

	require.Eventually(t, func() bool { return rec.failures() >= 3 }, 5*time.Second, time.Millisecond)
	assert.Empty(t, c.snapshot())

	spy.FailGets(nil)
	got := c.waitFor(t, 1)
	assert.Equal(t, present(item{ID: 7, Value: "x"}), got[0])
}

func TestWatcher_IndependentSubscriptions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := store.NewMemory()
	require.NoError(t, s.Put(ctx, "watch.json", item{ID: 1}))

	w := watch.New[item](s, "watch.json", watch.WithInterval(interval))
	assert.Equal(t, "watch.json", w.Key())
	assert.Equal(t, interval, w.Interval())

	first := collect(w.Watch(ctx))
	first.waitFor(t, 1)

	// A later subscription gets its own initial notification.
	second := collect(w.Watch(ctx))
	second.waitFor(t, 1)
	assert.Len(t, first.snapshot(), 1)
}

func TestNew_Defaults(t *testing.T) {
	w := watch.New[item](store.NewMemory(), "a.json", watch.WithInterval(-time.Second), watch.WithInterval(0))
	assert.Equal(t, watch.DefaultInterval, w.Interval())
}

type countingRecorder struct {
	mu      sync.Mutex
	polls   int
	emitted int
	failed  int
}

func (r *countingRecorder) Polled(string) {
	r.mu.Lock()
	r.polls++
	r.mu.Unlock()
}

func (r *countingRecorder) Emitted(string, bool) {
	r.mu.Lock()
	r.emitted++
	r.mu.Unlock()
}

func (r *countingRecorder) PollFailed(string) {
	r.mu.Lock()
	r.failed++
	r.mu.Unlock()
}

func (r *countingRecorder) failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func TestWatch_CancelBetweenTicksClosesWithoutTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := clockwork.NewFakeClock()
	s := store.NewMemory()

	w := watch.New[item](s, "idle.json", watch.WithInterval(time.Hour), watch.WithClock(clock))
	ch := w.Watch(ctx)
	assert.Equal(t, watch.Update[item]{}, <-ch)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watcher waited for the next tick after cancellation")
	}
}

func TestWatch_CancelDuringPollDropsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	spy := storetest.NewSpy()
	spy.Seed("busy.json", []byte(`{"id":1}`))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	spy.BeforeGet = func(string) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	ch := watch.Changes[item](ctx, spy, "busy.json", interval)
	<-entered
	cancel()
	close(release)

	select {
	case u, ok := <-ch:
		assert.False(t, ok, "got %+v after cancellation", u)
	case <-time.After(2 * interval):
		t.Fatal("channel not closed after the cancelled poll returned")
	}
}
