// Package schema validates JSON documents against CUE schemas.
//
// A Schema is compiled once and then used to check documents before they
// are written and after they are read:
//
//	s, err := schema.Compile(`#Profile: {name: string, age: int & >=0}`,
//	    schema.WithDefinition("#Profile"))
//	if err != nil {
//	    return err
//	}
//	err = s.ValidateJSON(ctx, []byte(`{"name":"Ada","age":36}`))
package schema

import (
	"context"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roncuevas/LocalJSON/errors"
)

// Options configures validation behavior.
type Options struct {
	// Concrete requires all values to be concrete (fully specified).
	Concrete bool

	// Final resolves default values before validation.
	Final bool

	// All reports all errors instead of stopping at the first one.
	All bool
}

// DefaultOptions requires concrete values, finalizes defaults and
// reports every issue.
func DefaultOptions() Options {
	return Options{Concrete: true, Final: true, All: true}
}

func (o Options) cue() []cue.Option {
	var opts []cue.Option
	if o.Concrete {
		opts = append(opts, cue.Concrete(true))
	}
	if o.Final {
		opts = append(opts, cue.Final())
	}
	if o.All {
		opts = append(opts, cue.All())
	}
	return opts
}

// Option configures Compile.
type Option func(*config)

type config struct {
	definition string
	options    Options
}

// WithDefinition selects a definition (e.g. "#Profile") inside the source
// as the schema instead of the whole file.
func WithDefinition(name string) Option {
	return func(c *config) {
		c.definition = name
	}
}

// WithOptions overrides DefaultOptions.
func WithOptions(opts Options) Option {
	return func(c *config) {
		c.options = opts
	}
}

// Issue is a single validation failure.
type Issue struct {
	// Path is the field path where the error occurred.
	Path []string

	// Message is the human-readable error message.
	Message string

	// Position is the source position if available.
	Position token.Pos
}

// Schema is a compiled CUE schema. It is safe for concurrent use.
type Schema struct {
	mu      sync.Mutex
	ctx     *cue.Context
	value   cue.Value
	options Options
}

// Compile compiles CUE source into a Schema.
// Returns CodeInvalidConfig when the source does not compile or the
// requested definition is missing.
func Compile(src string, opts ...Option) (*Schema, error) {
	cfg := config{options: DefaultOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}

	cctx := cuecontext.New()
	value := cctx.CompileString(src, cue.Filename("schema.cue"))
	if err := value.Err(); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "schema does not compile",
			map[string]interface{}{"details": cueerrors.Details(err, nil)})
	}

	if cfg.definition != "" {
		value = value.LookupPath(cue.ParsePath(cfg.definition))
		if !value.Exists() {
			return nil, errors.Newf(errors.CodeInvalidConfig, "schema definition %s not found", cfg.definition)
		}
		if err := value.Err(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "schema definition %s is invalid", cfg.definition)
		}
	}

	return &Schema{ctx: cctx, value: value, options: cfg.options}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string, opts ...Option) *Schema {
	s, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON checks raw JSON bytes against the schema.
// Returns CodeDecodeFailed when data is not JSON and CodeSchemaFailed when
// it does not satisfy the schema.
func (s *Schema) ValidateJSON(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled before validation")
	}

	expr, err := cuejson.Extract("document.json", data)
	if err != nil {
		return errors.Wrap(err, errors.CodeDecodeFailed, "document is not valid JSON")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate(s.ctx.BuildExpr(expr))
}

// ValidateValue encodes a Go value and checks it against the schema.
func (s *Schema) ValidateValue(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled before validation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate(s.ctx.Encode(v))
}

func (s *Schema) validate(data cue.Value) error {
	if err := data.Err(); err != nil {
		return errors.WrapWithContext(err, errors.CodeSchemaFailed, "document is invalid",
			map[string]interface{}{"issues": extractIssues(err)})
	}

	unified := s.value.Unify(data)
	// Validate directly so All can collect every error at once.
	if err := unified.Validate(s.options.cue()...); err != nil {
		return errors.WrapWithContext(err, errors.CodeSchemaFailed, "schema validation failed",
			map[string]interface{}{
				"details": cueerrors.Details(err, nil),
				"issues":  extractIssues(err),
			})
	}
	return nil
}

// Issues returns the structured issues recorded on a validation error,
// or nil if err did not come from this package.
func Issues(err error) []Issue {
	var se errors.StoreError
	if !errors.As(err, &se) {
		return nil
	}
	issues, _ := se.Context()["issues"].([]Issue)
	return issues
}

func extractIssues(err error) []Issue {
	if err == nil {
		return nil
	}

	var issues []Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()

		var pos token.Pos
		if positions := e.InputPositions(); len(positions) > 0 {
			pos = positions[0]
		}

		issues = append(issues, Issue{
			Path:     e.Path(),
			Message:  fmt.Sprintf(format, args...),
			Position: pos,
		})
	}
	return issues
}
