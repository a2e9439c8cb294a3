// Package selector parses state conditions used as keys of state maps into
// boolean expressions over element attributes and renders them as CSS
// selectors.
//
// Condition grammar (precedence ! > & > |):
//
//	expr    := and ('|' and)*
//	and     := unary ('&' unary)*
//	unary   := '!' unary | primary
//	primary := '(' expr ')' | atom
//	atom    := name | name '=' value | '[' raw ']' | ':' pseudo | '.' class | '@' alias
//
// Empty condition is always true.
package selector

import (
	"strconv"
	"strings"
)

// AtomKind defines what element property atom tests.
type AtomKind int

const (
	AtomFlag   AtomKind = iota // boolean attribute present
	AtomEqual                  // attribute has value
	AtomRaw                    // raw attribute selector
	AtomPseudo                 // pseudo class
	AtomClass                  // class name
)

// Atom is a single predicate over element state.
type Atom struct {
	Kind  AtomKind
	Name  string // attribute name, or full selector text for raw, pseudo and class atoms
	Value string
}

// Key uniquely identifies atom.
func (a Atom) Key() string {
	switch a.Kind {
	case AtomFlag:
		return a.Name
	case AtomEqual:
		return a.Name + "=" + strconv.Quote(a.Value)
	default:
		return a.Name
	}
}

// CSS renders atom as simple selector, attribute names get prefix.
func (a Atom) CSS(prefix string) string {
	switch a.Kind {
	case AtomFlag:
		return "[" + prefix + a.Name + "]"
	case AtomEqual:
		return "[" + prefix + a.Name + `="` + escapeValue(a.Value) + `"]`
	default:
		return a.Name
	}
}

func escapeValue(v string) string {
	if !strings.ContainsAny(v, `"\`) {
		return v
	}
	var sb strings.Builder
	for _, r := range v {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Op is expression node operation.
type Op int

const (
	OpTrue Op = iota
	OpAtom
	OpNot
	OpAnd
	OpOr
)

// Expr is a node of boolean condition tree.
type Expr struct {
	Op   Op
	Atom Atom
	Args []*Expr
}

// Test evaluates expression using truth function for atoms.
func (e *Expr) Test(truth func(Atom) bool) bool {
	switch e.Op {
	case OpTrue:
		return true
	case OpAtom:
		return truth(e.Atom)
	case OpNot:
		return !e.Args[0].Test(truth)
	case OpAnd:
		for _, a := range e.Args {
			if !a.Test(truth) {
				return false
			}
		}
		return true
	case OpOr:
		for _, a := range e.Args {
			if a.Test(truth) {
				return true
			}
		}
		return false
	}
	return false
}

// Env is concrete element state: attribute names (without prefix) mapped to
// their values. Pseudo classes, classes and raw selectors which are active
// are present under their selector text.
type Env map[string]string

// Eval evaluates expression against element state.
func (e *Expr) Eval(env Env) bool {
	return e.Test(func(a Atom) bool {
		v, ok := env[a.Name]
		if a.Kind == AtomEqual {
			return ok && v == a.Value
		}
		return ok
	})
}

// Atoms returns unique atoms in order of first appearance.
func (e *Expr) Atoms() []Atom {
	var (
		res  []Atom
		seen = make(map[string]bool)
	)
	var walk func(*Expr)
	walk = func(x *Expr) {
		if x.Op == OpAtom {
			if k := x.Atom.Key(); !seen[k] {
				seen[k] = true
				res = append(res, x.Atom)
			}
			return
		}
		for _, a := range x.Args {
			walk(a)
		}
	}
	walk(e)
	return res
}

// Single returns atom when expression consists of exactly one positive atom.
func (e *Expr) Single() (Atom, bool) {
	if e.Op == OpAtom {
		return e.Atom, true
	}
	return Atom{}, false
}

// CSS renders expression as compound selector: disjunctions become :is(),
// negations :not(). Unconditional expression renders empty.
func (e *Expr) CSS(prefix string) string {
	switch e.Op {
	case OpAtom:
		return e.Atom.CSS(prefix)
	case OpNot:
		return ":not(" + e.Args[0].CSS(prefix) + ")"
	case OpAnd:
		var sb strings.Builder
		for _, a := range e.Args {
			sb.WriteString(a.CSS(prefix))
		}
		return sb.String()
	case OpOr:
		parts := make([]string, 0, len(e.Args))
		for _, a := range e.Args {
			parts = append(parts, a.CSS(prefix))
		}
		return ":is(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

// String returns canonical condition text.
func (e *Expr) String() string {
	return e.format(OpOr)
}

func (e *Expr) format(parent Op) string {
	switch e.Op {
	case OpTrue:
		return ""
	case OpAtom:
		switch e.Atom.Kind {
		case AtomFlag:
			return e.Atom.Name
		case AtomEqual:
			return e.Atom.Name + "=" + strconv.Quote(e.Atom.Value)
		default:
			return e.Atom.Name
		}
	case OpNot:
		return "!" + e.Args[0].format(OpNot)
	}
	sep := " & "
	if e.Op == OpOr {
		sep = " | "
	}
	parts := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		parts = append(parts, a.format(e.Op))
	}
	s := strings.Join(parts, sep)
	if e.Op > parent || parent == OpNot {
		s = "(" + s + ")"
	}
	return s
}
