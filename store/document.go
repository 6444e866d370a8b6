package store

import (
	"context"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/schema"
)

// Document is a typed handle on a single key.
//
// Value and Set mirror a plain property: Value reports false instead of
// an error and Set(nil) removes the document. Load, Save and Remove
// return errors for callers that need them.
type Document[T any] struct {
	store  Store
	key    string
	codec  Codec
	schema *schema.Schema
}

// DocumentOption configures a Document.
type DocumentOption func(*documentConfig)

type documentConfig struct {
	codec  Codec
	schema *schema.Schema
}

// WithSchema validates documents against s on Load and Save.
func WithSchema(s *schema.Schema) DocumentOption {
	return func(c *documentConfig) {
		c.schema = s
	}
}

// WithDocumentCodec sets the codec used to encode and decode T.
func WithDocumentCodec(codec Codec) DocumentOption {
	return func(c *documentConfig) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// NewDocument returns a handle on key in s.
func NewDocument[T any](s Store, key string, opts ...DocumentOption) *Document[T] {
	cfg := documentConfig{codec: DefaultCodec()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Document[T]{store: s, key: key, codec: cfg.codec, schema: cfg.schema}
}

// Key returns the document key.
func (d *Document[T]) Key() string {
	return d.key
}

// Load reads and decodes the document.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	var zero T

	data, err := d.store.Get(ctx, d.key)
	if err != nil {
		return zero, err
	}
	if d.schema != nil {
		if err := d.schema.ValidateJSON(ctx, data); err != nil {
			return zero, errors.WrapWithContext(err, errors.CodeDecodeFailed, "stored document does not match schema",
				map[string]interface{}{"key": d.key})
		}
	}

	var v T
	if err := Decode(d.codec, d.key, data, &v); err != nil {
		return zero, err
	}
	return v, nil
}

// Save encodes v and writes it. Nothing is written when v fails the schema.
func (d *Document[T]) Save(ctx context.Context, v T) error {
	data, err := Encode(d.codec, d.key, v)
	if err != nil {
		return err
	}
	if d.schema != nil {
		if err := d.schema.ValidateJSON(ctx, data); err != nil {
			return errors.WrapWithContext(err, errors.CodeEncodeFailed, "document does not match schema",
				map[string]interface{}{"key": d.key})
		}
	}
	return d.store.PutRaw(ctx, d.key, data)
}

// Remove deletes the document.
func (d *Document[T]) Remove(ctx context.Context) error {
	return d.store.Delete(ctx, d.key)
}

// Value returns the decoded document, or false if it cannot be loaded for
// any reason.
func (d *Document[T]) Value(ctx context.Context) (T, bool) {
	v, err := d.Load(ctx)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Set saves *v, or removes the document when v is nil. Errors are
// discarded; use Save or Remove to observe them.
func (d *Document[T]) Set(ctx context.Context, v *T) {
	if v == nil {
		_ = d.Remove(ctx)
		return
	}
	_ = d.Save(ctx, *v)
}
