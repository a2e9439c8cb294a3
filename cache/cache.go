// Package cache keeps compiled rules keyed by stable hash of their input.
// Caches are never the only source of truth: any failure results in
// recompilation.
package cache

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"stylec/css"
	"stylec/styles"
)

// Key identifies compilation input.
type Key uint64

func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// NewKey hashes canonical form of description together with breakpoints and
// salt describing compiler settings.
func NewKey(desc *styles.Description, breakpoints []float64, salt string) (Key, error) {
	d := xxhash.New()
	if _, err := d.WriteString(salt + "\x00"); err != nil {
		return 0, err
	}
	for _, b := range breakpoints {
		if _, err := d.WriteString(strconv.FormatFloat(b, 'f', -1, 64) + ","); err != nil {
			return 0, err
		}
	}
	if _, err := d.WriteString("\x00"); err != nil {
		return 0, err
	}
	if err := styles.WriteCanonical(d, desc); err != nil {
		return 0, fmt.Errorf("unable to serialize description: %w", err)
	}
	return Key(d.Sum64()), nil
}

// Store keeps compiled rules.
type Store interface {
	Get(key Key) ([]css.Rule, bool, error)
	Put(key Key, rules []css.Rule) error
	Close() error
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

// Compiler compiles descriptions through store.
type Compiler struct {
	store    Store
	compiler *styles.Compiler
	salt     string
	log      *zap.Logger
	stats    Stats
}

// NewCompiler wraps compiler with store. Salt must change whenever compiler
// settings affecting output change.
func NewCompiler(store Store, compiler *styles.Compiler, salt string, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{store: store, compiler: compiler, salt: salt, log: log.Named("cache")}
}

// Compile returns cached rules when available, otherwise compiles and stores
// them. Store failures are logged and never fail compilation.
func (c *Compiler) Compile(desc *styles.Description, breakpoints []float64) ([]css.Rule, error) {
	key, err := NewKey(desc, breakpoints, c.salt)
	if err != nil {
		c.log.Warn("Unable to compute cache key", zap.Error(err))
		return c.compiler.Compile(desc, breakpoints)
	}
	rules, ok, err := c.store.Get(key)
	switch {
	case err != nil:
		c.log.Warn("Unable to read cache", zap.Stringer("key", key), zap.Error(err))
	case ok:
		c.stats.Hits++
		c.log.Debug("Cache hit", zap.Stringer("key", key))
		return rules, nil
	}
	c.stats.Misses++

	rules, err = c.compiler.Compile(desc, breakpoints)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(key, rules); err != nil {
		c.log.Warn("Unable to update cache", zap.Stringer("key", key), zap.Error(err))
	}
	return rules, nil
}

// Stats returns hit and miss counts of this compiler.
func (c *Compiler) Stats() Stats {
	return c.stats
}

// cachedRule is persistent form of css.Rule.
type cachedRule struct {
	Selector     string       `yaml:"s"`
	Declarations []cachedDecl `yaml:"d,flow"`
	AtRules      []string     `yaml:"m,omitempty,flow"`
}

type cachedDecl struct {
	Property string `yaml:"p"`
	Value    string `yaml:"v"`
}

func marshalRules(rules []css.Rule) ([]byte, error) {
	out := make([]cachedRule, 0, len(rules))
	for _, r := range rules {
		cr := cachedRule{Selector: r.Selector, AtRules: r.AtRules}
		for _, d := range r.Declarations {
			cr.Declarations = append(cr.Declarations, cachedDecl{Property: d.Property, Value: d.Value})
		}
		out = append(out, cr)
	}
	return yaml.Marshal(out)
}

func unmarshalRules(data []byte) ([]css.Rule, error) {
	var in []cachedRule
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	rules := make([]css.Rule, 0, len(in))
	for _, cr := range in {
		r := css.Rule{Selector: cr.Selector, AtRules: cr.AtRules}
		for _, d := range cr.Declarations {
			r.Declarations = append(r.Declarations, css.Declaration{Property: d.Property, Value: d.Value})
		}
		rules = append(rules, r)
	}
	return rules, nil
}
