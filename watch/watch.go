// Package watch turns periodic reads of one document into a stream of
// updates.
//
// A Watcher polls its key on a fixed interval. The first poll always
// produces an Update describing the current state; later polls produce
// one only when the stored bytes differ from the previous observation.
//
//	w := watch.New[Prefs](st, "prefs.json", watch.WithInterval(500*time.Millisecond))
//	for u := range w.Watch(ctx) {
//	    if !u.Present {
//	        continue
//	    }
//	    apply(u.Value)
//	}
package watch

import (
	"bytes"
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/logging"
	"github.com/roncuevas/LocalJSON/store"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = time.Second

// Update is one observation of the watched key. Present is false when the
// document is absent or could not be decoded.
type Update[T any] struct {
	Value   T
	Present bool
}

// Recorder receives poll events.
type Recorder interface {
	Polled(key string)
	Emitted(key string, present bool)
	PollFailed(key string)
}

type nopRecorder struct{}

func (nopRecorder) Polled(string)        {}
func (nopRecorder) Emitted(string, bool) {}
func (nopRecorder) PollFailed(string)    {}

// Option configures a Watcher.
type Option func(*config)

type config struct {
	interval time.Duration
	clock    clockwork.Clock
	codec    store.Codec
	logger   *logging.Logger
	recorder Recorder
}

// WithInterval sets the poll interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock sets the clock that drives the poll ticker.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithCodec sets the codec used to decode documents.
func WithCodec(codec store.Codec) Option {
	return func(c *config) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the poll event recorder.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Watcher polls one key of a store. A Watcher holds no state between
// calls to Watch, so each subscription starts from "not yet polled".
type Watcher[T any] struct {
	src store.Getter
	key string
	cfg config
}

// New returns a watcher for key in src.
func New[T any](src store.Getter, key string, opts ...Option) *Watcher[T] {
	cfg := config{
		interval: DefaultInterval,
		clock:    clockwork.NewRealClock(),
		codec:    store.DefaultCodec(),
		logger:   logging.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = cfg.logger.WithComponent("watch").WithKey(key)
	return &Watcher[T]{src: src, key: key, cfg: cfg}
}

// Key returns the watched key.
func (w *Watcher[T]) Key() string {
	return w.key
}

// Interval returns the poll interval.
func (w *Watcher[T]) Interval() time.Duration {
	return w.cfg.interval
}

// Watch starts polling and returns the update channel. The channel is
// unbuffered and is closed once ctx is done; polling waits for the
// consumer, so a slow consumer delays the next poll rather than
// accumulating updates.
func (w *Watcher[T]) Watch(ctx context.Context) <-chan Update[T] {
	out := make(chan Update[T])
	go w.run(ctx, out)
	return out
}

func (w *Watcher[T]) run(ctx context.Context, out chan<- Update[T]) {
	defer close(out)

	ticker := w.cfg.clock.NewTicker(w.cfg.interval)
	defer ticker.Stop()

	var (
		last    []byte
		present bool
		polled  bool
	)
	for {
		if ctx.Err() != nil {
			return
		}

		data, ok, err := w.poll(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil && (!polled || ok != present || !bytes.Equal(data, last)) {
			polled, present, last = true, ok, data

			update := w.decode(ctx, data, ok)
			select {
			case out <- update:
				w.cfg.recorder.Emitted(w.key, update.Present)
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

// poll reads the key once. A missing document is reported as ok=false
// with a nil error.
func (w *Watcher[T]) poll(ctx context.Context) ([]byte, bool, error) {
	w.cfg.recorder.Polled(w.key)

	data, err := w.src.Get(ctx, w.key)
	if err == nil {
		return data, true, nil
	}
	if errors.IsNotFound(err) {
		return nil, false, nil
	}
	if ctx.Err() == nil {
		w.cfg.recorder.PollFailed(w.key)
		w.cfg.logger.Warn(ctx, "poll failed, keeping last observation", "error", err.Error())
	}
	return nil, false, err
}

func (w *Watcher[T]) decode(ctx context.Context, data []byte, ok bool) Update[T] {
	if !ok {
		return Update[T]{}
	}
	var v T
	if err := store.Decode(w.cfg.codec, w.key, data, &v); err != nil {
		w.cfg.logger.Warn(ctx, "document does not decode, emitting absent", "error", err.Error())
		return Update[T]{}
	}
	return Update[T]{Value: v, Present: true}
}

// Changes is shorthand for New(src, key, WithInterval(interval)).Watch(ctx).
func Changes[T any](ctx context.Context, src store.Getter, key string, interval time.Duration) <-chan Update[T] {
	return New[T](src, key, WithInterval(interval)).Watch(ctx)
}
