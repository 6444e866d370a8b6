package cache

import (
	"github.com/jonboulle/clockwork"

	"github.com/roncuevas/LocalJSON/logging"
	"github.com/roncuevas/LocalJSON/store"
)

// Option configures a Cached store.
type Option func(*Cached)

// WithPolicy sets the cache policy. The default is DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(c *Cached) {
		c.policy = p
	}
}

// WithCodec sets the codec used by GetInto and Put.
func WithCodec(codec store.Codec) Option {
	return func(c *Cached) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithClock sets the clock used for TTL and recency. Tests pass a
// clockwork.FakeClock.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cached) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the event recorder, e.g. a metrics.Recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Cached) {
		if r != nil {
			c.recorder = r
		}
	}
}
