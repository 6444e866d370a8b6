package cache

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roncuevas/LocalJSON/errors"
)

const (
	// DefaultTTL is the entry lifetime used by DefaultPolicy.
	DefaultTTL = 300 * time.Second
	// DefaultMaxEntries is the table bound used by DefaultPolicy.
	DefaultMaxEntries = 100
)

// Policy configures a Cached store. It is a value type; the decorator
// copies it at construction and never mutates it.
type Policy struct {
	// ReadCache serves repeated reads from memory.
	ReadCache bool
	// WriteDedup skips writes whose bytes equal the cached bytes.
	WriteDedup bool
	// TTL bounds entry lifetime from creation. Nil means entries never expire.
	TTL *time.Duration
	// MaxEntries bounds the table size. Nil means unbounded.
	MaxEntries *int
	// CoalesceMisses shares one backend read between concurrent misses
	// for the same key.
	CoalesceMisses bool
}

// DefaultPolicy enables both caches with a five minute TTL and 100 entries.
func DefaultPolicy() Policy {
	ttl := DefaultTTL
	max := DefaultMaxEntries
	return Policy{
		ReadCache:  true,
		WriteDedup: true,
		TTL:        &ttl,
		MaxEntries: &max,
	}
}

// DisabledPolicy turns the decorator into a passthrough.
func DisabledPolicy() Policy {
	return Policy{}
}

// WithTTL returns a copy of p with the given TTL.
func (p Policy) WithTTL(ttl time.Duration) Policy {
	p.TTL = &ttl
	return p
}

// WithoutTTL returns a copy of p whose entries never expire.
func (p Policy) WithoutTTL() Policy {
	p.TTL = nil
	return p
}

// WithMaxEntries returns a copy of p bounded to n entries.
func (p Policy) WithMaxEntries(n int) Policy {
	p.MaxEntries = &n
	return p
}

// Unbounded returns a copy of p with no entry limit.
func (p Policy) Unbounded() Policy {
	p.MaxEntries = nil
	return p
}

// Enabled reports whether the policy keeps any entries at all.
func (p Policy) Enabled() bool {
	return p.ReadCache || p.WriteDedup
}

// Validate checks the policy for invalid values.
func (p Policy) Validate() error {
	if p.TTL != nil && *p.TTL < 0 {
		return errors.WithContext(errors.New(errors.CodeInvalidConfig, "ttl must not be negative"), "ttl", p.TTL.String())
	}
	if p.MaxEntries != nil && *p.MaxEntries < 1 {
		return errors.WithContext(errors.New(errors.CodeInvalidConfig, "max entries must be at least 1"), "max_entries", *p.MaxEntries)
	}
	return nil
}

// String renders the policy for logs.
func (p Policy) String() string {
	ttl := "none"
	if p.TTL != nil {
		ttl = p.TTL.String()
	}
	max := "unbounded"
	if p.MaxEntries != nil {
		max = fmt.Sprint(*p.MaxEntries)
	}
	return fmt.Sprintf("read_cache=%t write_dedup=%t ttl=%s max_entries=%s coalesce_misses=%t",
		p.ReadCache, p.WriteDedup, ttl, max, p.CoalesceMisses)
}

// policyFile is the YAML form of a Policy. ttl accepts a Go duration
// string, a number of seconds or "none"; max_entries accepts a number or
// "none".
type policyFile struct {
	ReadCache      *bool `yaml:"read_cache"`
	WriteDedup     *bool `yaml:"write_dedup"`
	TTL            any   `yaml:"ttl"`
	MaxEntries     any   `yaml:"max_entries"`
	CoalesceMisses *bool `yaml:"coalesce_misses"`
}

// ParsePolicy decodes a YAML policy. Fields that are not set keep their
// DefaultPolicy values.
//
//	read_cache: true
//	write_dedup: false
//	ttl: 90s
//	max_entries: none
func ParsePolicy(data []byte) (Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Policy{}, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse cache policy")
	}
	return f.policy()
}

// UnmarshalYAML lets a Policy be embedded in larger YAML documents.
func (p *Policy) UnmarshalYAML(node *yaml.Node) error {
	var f policyFile
	if err := node.Decode(&f); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse cache policy")
	}
	parsed, err := f.policy()
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (f policyFile) policy() (Policy, error) {
	p := DefaultPolicy()
	if f.ReadCache != nil {
		p.ReadCache = *f.ReadCache
	}
	if f.WriteDedup != nil {
		p.WriteDedup = *f.WriteDedup
	}
	if f.CoalesceMisses != nil {
		p.CoalesceMisses = *f.CoalesceMisses
	}

	switch v := f.TTL.(type) {
	case nil:
	case int:
		p = p.WithTTL(time.Duration(v) * time.Second)
	case float64:
		p = p.WithTTL(time.Duration(v * float64(time.Second)))
	case string:
		if isNone(v) {
			p = p.WithoutTTL()
			break
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return Policy{}, errors.Wrapf(err, errors.CodeInvalidConfig, "invalid ttl %q", v)
		}
		p = p.WithTTL(d)
	default:
		return Policy{}, errors.Newf(errors.CodeInvalidConfig, "invalid ttl %v", v)
	}

	switch v := f.MaxEntries.(type) {
	case nil:
	case int:
		p = p.WithMaxEntries(v)
	case string:
		if !isNone(v) {
			return Policy{}, errors.Newf(errors.CodeInvalidConfig, "invalid max_entries %q", v)
		}
		p = p.Unbounded()
	default:
		return Policy{}, errors.Newf(errors.CodeInvalidConfig, "invalid max_entries %v", v)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func isNone(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off", "unbounded":
		return true
	}
	return false
}
