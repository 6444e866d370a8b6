package store

import (
	"io/fs"

	"github.com/roncuevas/LocalJSON/logging"
)

// Option configures a FileStore.
type Option func(*options)

type options struct {
	codec    Codec
	logger   *logging.Logger
	filePerm fs.FileMode
	dirPerm  fs.FileMode
}

func defaultOptions() options {
	return options{
		codec:    DefaultCodec(),
		logger:   logging.Nop(),
		filePerm: 0o644,
		dirPerm:  0o755,
	}
}

// WithCodec sets the codec used by GetInto and Put.
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPermissions sets the modes for new documents and directories.
func WithPermissions(file, dir fs.FileMode) Option {
	return func(o *options) {
		o.filePerm = file
		o.dirPerm = dir
	}
}
