package store

import (
	"bytes"
	"encoding/json"

	"github.com/roncuevas/LocalJSON/errors"
)

// Codec converts between Go values and document bytes.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// DefaultIndent is the indentation written by DefaultCodec.
const DefaultIndent = "  "

// JSONCodec encodes documents as JSON. A non-empty Indent pretty-prints.
type JSONCodec struct {
	Indent string
}

// DefaultCodec returns the pretty-printing JSON codec used when no codec
// is configured.
func DefaultCodec() JSONCodec {
	return JSONCodec{Indent: DefaultIndent}
}

// Marshal encodes v.
func (c JSONCodec) Marshal(v any) ([]byte, error) {
	if c.Indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", c.Indent)
}

// Unmarshal decodes data into v.
func (c JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Encode marshals v with c, mapping failures to CodeEncodeFailed.
func Encode(c Codec, key string, v any) ([]byte, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeEncodeFailed, "encoding failed",
			map[string]interface{}{"key": key})
	}
	return data, nil
}

// Decode unmarshals data into v with c, mapping failures to CodeDecodeFailed.
func Decode(c Codec, key string, data []byte, v any) error {
	if err := c.Unmarshal(data, v); err != nil {
		return errors.WrapWithContext(err, errors.CodeDecodeFailed, "decoding failed",
			map[string]interface{}{"key": key})
	}
	return nil
}

// ValidJSON reports whether data is a single well-formed JSON value.
func ValidJSON(data []byte) bool {
	return json.Valid(bytes.TrimSpace(data))
}
