package shorthand

import (
	"maps"
	"strconv"
)

// Unit describes a custom unit. When Convert is set it is called with the
// numeric amount and its source text, otherwise the value renders through
// the fixed Expr.
type Unit struct {
	Expr    string
	Convert func(amount float64, number string) string
}

func (u Unit) render(amount float64, number string) string {
	if u.Convert != nil {
		return u.Convert(amount, number)
	}
	switch amount {
	case 0:
		return "0"
	case 1:
		return u.Expr
	}
	return "calc(" + number + " * " + u.Expr + ")"
}

// Func transforms already rendered arguments of a custom function into CSS
// text.
type Func func(args []string) string

// Registry holds custom units and functions known to the renderer.
type Registry struct {
	units map[string]Unit
	funcs map[string]Func
}

// NewRegistry returns a registry populated with builtin units.
func NewRegistry() *Registry {
	r := &Registry{
		units: make(map[string]Unit),
		funcs: make(map[string]Func),
	}
	for name, expr := range map[string]string{
		"x":  "var(--gap)",
		"r":  "var(--radius)",
		"cr": "var(--card-radius)",
		"bw": "var(--border-width)",
		"ow": "var(--outline-width)",
		"fs": "var(--font-size)",
		"lh": "var(--line-height)",
	} {
		r.units[name] = Unit{Expr: expr}
	}
	r.units["sf"] = Unit{Convert: func(amount float64, number string) string {
		return "minmax(0, " + strconv.FormatFloat(amount, 'f', -1, 64) + "fr)"
	}}
	return r
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	return &Registry{
		units: maps.Clone(r.units),
		funcs: maps.Clone(r.funcs),
	}
}

// SetUnit registers or replaces unit.
func (r *Registry) SetUnit(name string, u Unit) {
	r.units[name] = u
}

// Unit returns unit registered under name.
func (r *Registry) Unit(name string) (Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// SetFunc registers or replaces custom function.
func (r *Registry) SetFunc(name string, fn Func) {
	r.funcs[name] = fn
}

// Func returns custom function registered under name.
func (r *Registry) Func(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns process wide registry used when parser is created
// without explicit one. It is meant to be modified once (from configuration)
// before any parsing starts, access is not synchronized.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
