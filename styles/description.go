// Package styles holds the style description model together with the merge
// engine and the compiler which turns descriptions into CSS rules.
package styles

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// Inherit used as state map entry value takes the value of the same
	// state from the inherited map.
	Inherit = "@inherit"
	// ExtendKey set to true marks state map as extending inherited one.
	ExtendKey = "@extend"
)

// Description is an ordered mapping from property names and slot keys to
// values. Values are literals (string, float64, bool), per zone arrays
// ([]any), state maps (*StateMap), nested slot descriptions (*Description)
// or nil which is a tombstone. Absent key means "undefined".
type Description struct {
	props *orderedmap.OrderedMap[string, any]
}

// New creates empty description.
func New() *Description {
	return &Description{props: orderedmap.New[string, any]()}
}

// Set adds or replaces value keeping position of existing key. It returns
// the description to allow chaining.
func (d *Description) Set(key string, value any) *Description {
	d.props.Set(key, value)
	return d
}

// Get returns value stored under key.
func (d *Description) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	return d.props.Get(key)
}

// Delete removes key.
func (d *Description) Delete(key string) {
	d.props.Delete(key)
}

// Len returns number of keys.
func (d *Description) Len() int {
	if d == nil {
		return 0
	}
	return d.props.Len()
}

// Keys returns keys in declaration order.
func (d *Description) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, d.props.Len())
	for p := d.props.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Each calls fn for every key in declaration order.
func (d *Description) Each(fn func(key string, value any)) {
	if d == nil {
		return
	}
	for p := d.props.Oldest(); p != nil; p = p.Next() {
		fn(p.Key, p.Value)
	}
}

// Clone returns deep copy.
func (d *Description) Clone() *Description {
	res := New()
	d.Each(func(k string, v any) {
		res.props.Set(k, cloneValue(v))
	})
	return res
}

// StateMap maps conditions to values. Entry order defines precedence: later
// entries win.
type StateMap struct {
	Extend  bool
	entries *orderedmap.OrderedMap[string, any]
}

// NewStateMap creates empty state map.
func NewStateMap() *StateMap {
	return &StateMap{entries: orderedmap.New[string, any]()}
}

// States builds state map from condition, value pairs.
func States(pairs ...any) *StateMap {
	sm := NewStateMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		sm.Set(key, pairs[i+1])
	}
	return sm
}

// Extending builds extend directive from condition, value pairs.
func Extending(pairs ...any) *StateMap {
	sm := States(pairs...)
	sm.Extend = true
	return sm
}

// Set adds or replaces entry keeping position of existing key.
func (s *StateMap) Set(key string, value any) *StateMap {
	s.entries.Set(key, value)
	return s
}

// Get returns entry value.
func (s *StateMap) Get(key string) (any, bool) {
	return s.entries.Get(key)
}

// Delete removes entry.
func (s *StateMap) Delete(key string) {
	s.entries.Delete(key)
}

// MoveToBack moves existing entry to the highest precedence position.
func (s *StateMap) MoveToBack(key string) error {
	return s.entries.MoveToBack(key)
}

// Len returns number of entries.
func (s *StateMap) Len() int {
	return s.entries.Len()
}

// Keys returns conditions in declaration order.
func (s *StateMap) Keys() []string {
	keys := make([]string, 0, s.entries.Len())
	for p := s.entries.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Each calls fn for every entry in declaration order.
func (s *StateMap) Each(fn func(key string, value any)) {
	for p := s.entries.Oldest(); p != nil; p = p.Next() {
		fn(p.Key, p.Value)
	}
}

// Clone returns deep copy.
func (s *StateMap) Clone() *StateMap {
	res := NewStateMap()
	res.Extend = s.Extend
	s.Each(func(k string, v any) {
		res.entries.Set(k, cloneValue(v))
	})
	return res
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Description:
		return x.Clone()
	case *StateMap:
		return x.Clone()
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = cloneValue(e)
		}
		return res
	}
	return v
}

// IsSlotKey reports whether key addresses nested element rather than a
// property: it starts with '&' or '.', or with an upper case letter.
func IsSlotKey(key string) bool {
	if key == "" {
		return false
	}
	if key[0] == '&' || key[0] == '.' {
		return true
	}
	r, _ := utf8.DecodeRuneInString(key)
	return unicode.IsUpper(r)
}

// slotSuffix converts slot key into selector suffix appended to the host
// selector.
func slotSuffix(key string) string {
	switch {
	case strings.HasPrefix(key, "&"):
		return key[1:]
	case strings.HasPrefix(key, "."):
		return " " + key
	}
	return ` [data-element="` + key + `"]`
}

// Equal reports deep equality of two values of a description including
// entry order.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case *Description:
		y, ok := b.(*Description)
		if !ok || x.Len() != y.Len() {
			return false
		}
		if !slices.Equal(x.Keys(), y.Keys()) {
			return false
		}
		for _, k := range x.Keys() {
			xv, _ := x.Get(k)
			yv, _ := y.Get(k)
			if !Equal(xv, yv) {
				return false
			}
		}
		return true
	case *StateMap:
		y, ok := b.(*StateMap)
		if !ok || x.Extend != y.Extend || !slices.Equal(x.Keys(), y.Keys()) {
			return false
		}
		for _, k := range x.Keys() {
			xv, _ := x.Get(k)
			yv, _ := y.Get(k)
			if !Equal(xv, yv) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
