package selector

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// MaxAtoms limits number of distinct atoms one property may depend on,
// assignments are 64 bit masks.
const MaxAtoms = 64

// ExhaustiveAtoms is the largest space which is enumerated and minimized.
// Larger spaces are compiled into ordered rules.
const ExhaustiveAtoms = 10

// ErrTooManyAtoms is returned when state conditions of one property use more
// than MaxAtoms distinct atoms.
var ErrTooManyAtoms = errors.New("too many distinct state atoms")

// Space is an ordered set of atoms and enumerates their truth assignments.
// Assignment is a bit mask, bit i is truth of Atoms[i].
type Space struct {
	Atoms []Atom
	index map[string]int
	// impossible assignments, filled on first use
	impossible []uint64
	scanned    bool
}

func NewSpace() *Space {
	return &Space{index: make(map[string]int)}
}

// Add registers atoms of expression.
func (s *Space) Add(e *Expr) error {
	for _, a := range e.Atoms() {
		if _, ok := s.index[a.Key()]; ok {
			continue
		}
		if len(s.Atoms) == MaxAtoms {
			return fmt.Errorf("%w: more than %d", ErrTooManyAtoms, MaxAtoms)
		}
		s.index[a.Key()] = len(s.Atoms)
		s.Atoms = append(s.Atoms, a)
		s.impossible, s.scanned = nil, false
	}
	return nil
}

// Exhaustive reports whether space is small enough for Assignments and
// Minimize.
func (s *Space) Exhaustive() bool {
	return len(s.Atoms) <= ExhaustiveAtoms
}

// Len returns number of atoms.
func (s *Space) Len() int {
	return len(s.Atoms)
}

// Eval evaluates expression for assignment.
func (s *Space) Eval(e *Expr, mask uint64) bool {
	return e.Test(func(a Atom) bool {
		i, ok := s.index[a.Key()]
		return ok && mask&(1<<i) != 0
	})
}

// possible reports whether assignment can happen on a real element: one
// attribute cannot hold two values, and attribute with a value is present.
func (s *Space) possible(mask uint64) bool {
	values := make(map[string]bool)
	for i, a := range s.Atoms {
		if a.Kind != AtomEqual || mask&(1<<i) == 0 {
			continue
		}
		if values[a.Name] {
			return false
		}
		values[a.Name] = true
	}
	for i, a := range s.Atoms {
		if a.Kind == AtomFlag && mask&(1<<i) == 0 && values[a.Name] {
			return false
		}
	}
	return true
}

// Assignments returns all possible assignments in ascending order.
func (s *Space) Assignments() []uint64 {
	total := uint64(1) << len(s.Atoms)
	res := make([]uint64, 0, total)
	for m := range total {
		if s.possible(m) {
			res = append(res, m)
		}
	}
	return res
}

func (s *Space) dontCare() []uint64 {
	if !s.scanned {
		for m := range uint64(1) << len(s.Atoms) {
			if !s.possible(m) {
				s.impossible = append(s.impossible, m)
			}
		}
		s.scanned = true
	}
	return s.impossible
}

// Term is a conjunction of literals: atoms with bit set in Care take part,
// Value holds their required truth.
type Term struct {
	Care  uint64
	Value uint64
}

// Covers reports whether assignment satisfies term.
func (t Term) Covers(mask uint64) bool {
	return mask&t.Care == t.Value
}

// Minimize returns terms which together cover exactly given assignments out
// of all possible ones. Impossible assignments are used as don't cares.
func (s *Space) Minimize(on []uint64) []Term {
	if len(on) == 0 {
		return nil
	}
	full := uint64(1)<<len(s.Atoms) - 1
	dc := s.dontCare()

	level := make(map[Term]bool, len(on)+len(dc))
	for _, m := range on {
		level[Term{Care: full, Value: m}] = true
	}
	for _, m := range dc {
		level[Term{Care: full, Value: m}] = true
	}

	var primes []Term
	for len(level) > 0 {
		next := make(map[Term]bool)
		for t := range level {
			merged := false
			for care := t.Care; care != 0; care &= care - 1 {
				bit := care & -care
				if !level[Term{Care: t.Care, Value: t.Value ^ bit}] {
					continue
				}
				next[Term{Care: t.Care &^ bit, Value: t.Value &^ bit}] = true
				merged = true
			}
			if !merged {
				primes = append(primes, t)
			}
		}
		level = next
	}
	slices.SortFunc(primes, compareTerms)

	// greedy cover of required assignments
	uncovered := make(map[uint64]bool, len(on))
	for _, m := range on {
		uncovered[m] = true
	}
	var res []Term
	for len(uncovered) > 0 {
		best, bestCount := -1, 0
		for i, t := range primes {
			count := 0
			for m := range uncovered {
				if t.Covers(m) {
					count++
				}
			}
			if count > bestCount || count == bestCount && count > 0 && bits.OnesCount64(t.Care) < bits.OnesCount64(primes[best].Care) {
				best, bestCount = i, count
			}
		}
		if best < 0 {
			break
		}
		t := primes[best]
		res = append(res, t)
		for m := range uncovered {
			if t.Covers(m) {
				delete(uncovered, m)
			}
		}
	}
	slices.SortFunc(res, compareTerms)
	return res
}

func compareTerms(a, b Term) int {
	if d := bits.OnesCount64(a.Care) - bits.OnesCount64(b.Care); d != 0 {
		return d
	}
	if a.Care != b.Care {
		if a.Care < b.Care {
			return -1
		}
		return 1
	}
	switch {
	case a.Value < b.Value:
		return -1
	case a.Value > b.Value:
		return 1
	}
	return 0
}

// Render renders term as compound selector suffix. Positive atoms come first,
// negated atoms are wrapped in :not().
func (s *Space) Render(t Term, prefix string) string {
	var pos, neg strings.Builder
	for i, a := range s.Atoms {
		bit := uint64(1) << i
		if t.Care&bit == 0 {
			continue
		}
		if t.Value&bit != 0 {
			pos.WriteString(a.CSS(prefix))
		} else {
			neg.WriteString(":not(" + a.CSS(prefix) + ")")
		}
	}
	return pos.String() + neg.String()
}
