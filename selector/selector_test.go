package selector

import (
	"errors"
	"math/bits"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"", ""},
		{"hover", "hover"},
		{"size=large", `size="large"`},
		{`size="x l"`, `size="x l"`},
		{"size='s'", `size="s"`},
		{"a & b | c", "a & b | c"},
		{"a & (b | c)", "a & (b | c)"},
		{"!a & b", "!a & b"},
		{"!(a | b)", "!(a | b)"},
		{"!!a", "!!a"},
		{"[aria-expanded]", "[aria-expanded]"},
		{":nth-child(2n+1) & .active", ":nth-child(2n+1) & .active"},
		{"  a   |b  ", "a | b"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src, Aliases{})
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.src, err)
			}
			if got := e.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"a &", "(a", "a b", "size=", "size='x", "[x", "| a", ":", "."} {
		if _, err := Parse(src, Aliases{}); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q) error = %v, want ErrSyntax", src, err)
		}
	}
	if _, err := Parse("@missing", Aliases{}); !errors.Is(err, ErrUnknownAlias) {
		t.Errorf("unknown alias error = %v", err)
	}
}

func TestParse_Aliases(t *testing.T) {
	e, err := Parse("@hover & !disabled", nil)
	if err != nil {
		t.Fatal(err)
	}
	atoms := e.Atoms()
	want := []Atom{{Kind: AtomPseudo, Name: ":hover"}, {Kind: AtomFlag, Name: "disabled"}}
	if !reflect.DeepEqual(atoms, want) {
		t.Errorf("atoms = %+v, want %+v", atoms, want)
	}

	custom := Aliases{"wide": "layout=wide | @hover"}
	if _, err := Parse("@wide", custom); !errors.Is(err, ErrUnknownAlias) {
		t.Errorf("nested alias error = %v", err)
	}
	e, err = Parse("@wide", Aliases{"wide": "layout=wide"})
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != `layout="wide"` {
		t.Errorf("alias expansion = %q", e.String())
	}
}

func TestSetDefaultAliases(t *testing.T) {
	saved := DefaultAliases()
	t.Cleanup(func() { SetDefaultAliases(saved) })

	SetDefaultAliases(saved.Merge(Aliases{"open": "[open]"}))
	if _, err := Parse("@open", nil); err != nil {
		t.Errorf("alias from default table not found: %v", err)
	}
	if _, ok := saved["open"]; ok {
		t.Errorf("Merge modified receiver")
	}
}

func TestEval(t *testing.T) {
	e, err := Parse("(size=large | pressed) & !disabled & :hover", Aliases{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		env  Env
		want bool
	}{
		{Env{"size": "large", ":hover": ""}, true},
		{Env{"pressed": "", ":hover": ""}, true},
		{Env{"size": "small", ":hover": ""}, false},
		{Env{"size": "large", "disabled": "", ":hover": ""}, false},
		{Env{"size": "large"}, false},
	}
	for i, tt := range tests {
		if got := e.Eval(tt.env); got != tt.want {
			t.Errorf("case %d: Eval(%v) = %v, want %v", i, tt.env, got, tt.want)
		}
	}
}

func TestAtomCSS(t *testing.T) {
	tests := []struct {
		atom Atom
		want string
	}{
		{Atom{Kind: AtomFlag, Name: "hidden"}, "[data-hidden]"},
		{Atom{Kind: AtomEqual, Name: "size", Value: "large"}, `[data-size="large"]`},
		{Atom{Kind: AtomEqual, Name: "q", Value: `a"b`}, `[data-q="a\"b"]`},
		{Atom{Kind: AtomRaw, Name: "[aria-busy]"}, "[aria-busy]"},
		{Atom{Kind: AtomPseudo, Name: ":hover"}, ":hover"},
		{Atom{Kind: AtomClass, Name: ".x"}, ".x"},
	}
	for _, tt := range tests {
		if got := tt.atom.CSS("data-"); got != tt.want {
			t.Errorf("CSS(%+v) = %q, want %q", tt.atom, got, tt.want)
		}
	}
}

func TestSpace_Assignments(t *testing.T) {
	s := NewSpace()
	for _, src := range []string{"size=s", "size=l", "size"} {
		e, _ := Parse(src, Aliases{})
		if err := s.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	// size=s, size=l, size: valid are none, flag only, s+flag, l+flag
	got := s.Assignments()
	want := []uint64{0b000, 0b100, 0b101, 0b110}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Assignments() = %b, want %b", got, want)
	}
}

func TestSpace_Minimize(t *testing.T) {
	s := NewSpace()
	a, _ := Parse("a", Aliases{})
	b, _ := Parse("b", Aliases{})
	_ = s.Add(a)
	_ = s.Add(b)

	// a true regardless of b
	terms := s.Minimize([]uint64{0b01, 0b11})
	if len(terms) != 1 || s.Render(terms[0], "data-") != "[data-a]" {
		t.Errorf("Minimize a = %+v", terms)
	}
	// not a and not b
	terms = s.Minimize([]uint64{0b00})
	if len(terms) != 1 || s.Render(terms[0], "data-") != ":not([data-a]):not([data-b])" {
		t.Errorf("Minimize !a&!b = %+v", terms)
	}
	// everything
	terms = s.Minimize([]uint64{0, 1, 2, 3})
	if len(terms) != 1 || terms[0].Care != 0 {
		t.Errorf("Minimize all = %+v", terms)
	}
	// a xor b cannot be merged
	terms = s.Minimize([]uint64{0b01, 0b10})
	if len(terms) != 2 {
		t.Errorf("Minimize xor = %+v", terms)
	}
}

func TestSpace_MinimizeUsesImpossible(t *testing.T) {
	s := NewSpace()
	for _, src := range []string{"size=s", "size=l"} {
		e, _ := Parse(src, Aliases{})
		_ = s.Add(e)
	}
	// size=s set: 01; size=s and size=l together is impossible and lets the
	// term drop the negated size=l literal
	terms := s.Minimize([]uint64{0b01})
	if len(terms) != 1 {
		t.Fatalf("terms = %+v", terms)
	}
	if got := s.Render(terms[0], "data-"); got != `[data-size="s"]` {
		t.Errorf("Render = %q", got)
	}
}

func TestSpace_TooManyAtoms(t *testing.T) {
	s := NewSpace()
	var err error
	for i := range MaxAtoms + 1 {
		e := &Expr{Op: OpAtom, Atom: Atom{Kind: AtomFlag, Name: string(rune('a' + i))}}
		if err = s.Add(e); err != nil {
			break
		}
	}
	if !errors.Is(err, ErrTooManyAtoms) {
		t.Errorf("error = %v, want ErrTooManyAtoms", err)
	}
}

func TestSpace_Exhaustive(t *testing.T) {
	s := NewSpace()
	for i := range ExhaustiveAtoms {
		_ = s.Add(&Expr{Op: OpAtom, Atom: Atom{Kind: AtomFlag, Name: string(rune('a' + i))}})
	}
	if !s.Exhaustive() {
		t.Fatalf("space of %d atoms is not exhaustive", s.Len())
	}
	// '' plus one flag per entry: every single flag group stays one term
	for i := range s.Len() {
		var on []uint64
		for _, m := range s.Assignments() {
			if m>>i == 1 {
				on = append(on, m)
			}
		}
		terms := s.Minimize(on)
		if len(terms) != 1 || bits.OnesCount64(terms[0].Care) != s.Len()-i {
			t.Errorf("Minimize(highest flag %d) = %+v", i, terms)
		}
	}
	_ = s.Add(&Expr{Op: OpAtom, Atom: Atom{Kind: AtomFlag, Name: "z"}})
	if s.Exhaustive() {
		t.Errorf("space of %d atoms is exhaustive", s.Len())
	}
}

func TestExpr_CSS(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"", ""},
		{"hovered", "[data-hovered]"},
		{"hovered & !disabled", "[data-hovered]:not([data-disabled])"},
		{"size=s | size=l", `:is([data-size="s"], [data-size="l"])`},
		{"!(a | b) & :focus", ":not(:is([data-a], [data-b])):focus"},
	}
	for _, tt := range tests {
		e, err := Parse(tt.src, Aliases{})
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.src, err)
		}
		if got := e.CSS("data-"); got != tt.want {
			t.Errorf("CSS(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestSuppressed(t *testing.T) {
	parse := func(srcs ...string) []*Expr {
		var res []*Expr
		for _, s := range srcs {
			e, err := Parse(s, Aliases{})
			if err != nil {
				t.Fatal(err)
			}
			res = append(res, e)
		}
		return res
	}
	tests := []struct {
		name  string
		conds []*Expr
		want  []bool
	}{
		{"flag then value", parse("", "size", "size=l"), []bool{false, true, false}},
		{"value then flag", parse("size=l", "size"), []bool{true, false}},
		{"different attributes", parse("size", "mode=l"), []bool{false, false}},
		{"compound not affected", parse("size & a", "size=l"), []bool{false, false}},
		{"two values kept", parse("size=s", "size=l"), []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suppressed(tt.conds); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suppressed = %v, want %v", got, tt.want)
			}
		})
	}
}
