package cache

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"stylec/css"
	"stylec/styles"
)

func sampleRules() []css.Rule {
	return []css.Rule{
		{Selector: "&", Declarations: []css.Declaration{{Property: "color", Value: "var(--text-color)"}, {Property: "gap", Value: "8px"}}},
		{Selector: "&[data-hovered]", Declarations: []css.Declaration{{Property: "color", Value: "red"}}, AtRules: []string{"(max-width: 767px)"}},
	}
}

func TestNewKey(t *testing.T) {
	a := styles.New().Set("fill", "#a").Set("color", styles.States("", "#b", "hover", "#c"))
	b := styles.New().Set("color", styles.States("", "#b", "hover", "#c")).Set("fill", "#a")

	ka, err := NewKey(a, []float64{768}, "data-")
	if err != nil {
		t.Fatal(err)
	}
	if kb, _ := NewKey(b, []float64{768}, "data-"); ka == kb {
		t.Errorf("key must depend on property order")
	}
	if kd, _ := NewKey(styles.New().Set("fill", "#a").Set("color", styles.States("", "#b", "hover", "#c")), []float64{768}, "data-"); kd != ka {
		t.Errorf("equal descriptions produce different keys: %s != %s", kd, ka)
	}
	if k, _ := NewKey(a, []float64{1024}, "data-"); k == ka {
		t.Errorf("key must depend on breakpoints")
	}
	if k, _ := NewKey(a, []float64{768}, "aria-"); k == ka {
		t.Errorf("key must depend on salt")
	}
	c := styles.New().Set("fill", "#a").Set("color", styles.States("hover", "#c", "", "#b"))
	if k, _ := NewKey(c, []float64{768}, "data-"); k == ka {
		t.Errorf("key must depend on state order")
	}
	if len(ka.String()) != 16 {
		t.Errorf("key string = %q", ka.String())
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(2)
	if _, ok, _ := m.Get(1); ok {
		t.Fatalf("empty store returned entry")
	}
	rules := sampleRules()
	if err := m.Put(1, rules); err != nil {
		t.Fatal(err)
	}
	got, ok, err := m.Get(1)
	if err != nil || !ok {
		t.Fatalf("Get: %v, %v", ok, err)
	}
	if !reflect.DeepEqual(got, rules) {
		t.Errorf("Get = %v", got)
	}
	got[0].Declarations[0].Value = "changed"
	if again, _, _ := m.Get(1); again[0].Declarations[0].Value == "changed" {
		t.Errorf("store shares memory with caller")
	}

	m.Put(2, rules)
	m.Put(3, rules)
	if m.Len() != 1 {
		t.Errorf("limit not applied, len = %d", m.Len())
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	rules := sampleRules()
	if err := s.Put(42, rules); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(42, rules[:1]); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(42)
	if err != nil || !ok {
		t.Fatalf("Get: %v, %v", ok, err)
	}
	if !reflect.DeepEqual(got, rules[:1]) {
		t.Errorf("Get = %+v, want %+v", got, rules[:1])
	}
	if _, ok, err := s.Get(7); ok || err != nil {
		t.Errorf("missing key: %v, %v", ok, err)
	}
	if n, err := s.Len(); err != nil || n != 1 {
		t.Errorf("Len = %d, %v", n, err)
	}
	if err := s.Purge(-time.Hour); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Errorf("Purge left %d entries", n)
	}
}

func TestSQLite_RoundTripAtRules(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	rules := sampleRules()
	if err := s.Put(1, rules); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, rules) {
		t.Errorf("Get = %+v", got)
	}
}

type brokenStore struct{ puts int }

var errBroken = errors.New("broken")

func (b *brokenStore) Get(Key) ([]css.Rule, bool, error) { return nil, false, errBroken }
func (b *brokenStore) Close() error                      { return nil }

func (b *brokenStore) Put(Key, []css.Rule) error {
	b.puts++
	return errBroken
}

func TestCompiler(t *testing.T) {
	desc := styles.New().Set("color", "#text")
	c := NewCompiler(NewMemory(0), styles.NewCompiler(zap.NewNop()), "data-", zap.NewNop())

	first, err := c.Compile(desc, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compile(styles.New().Set("color", "#text"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached rules differ: %v vs %v", first, second)
	}
	if st := c.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Errorf("stats = %+v", st)
	}

	broken := &brokenStore{}
	c = NewCompiler(broken, styles.NewCompiler(nil), "", nil)
	rules, err := c.Compile(desc, nil)
	if err != nil {
		t.Fatalf("broken store must not fail compilation: %v", err)
	}
	if len(rules) != 1 || broken.puts != 1 {
		t.Errorf("rules = %v, puts = %d", rules, broken.puts)
	}
}

func TestCompiler_PropertyOrder(t *testing.T) {
	plain := styles.NewCompiler(zap.NewNop())
	c := NewCompiler(NewMemory(0), plain, "data-", zap.NewNop())

	a := styles.New().Set("background", "red").Set("backgroundColor", "blue")
	b := styles.New().Set("backgroundColor", "blue").Set("background", "red")
	if _, err := c.Compile(a, nil); err != nil {
		t.Fatal(err)
	}
	got, err := c.Compile(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	want, err := plain.Compile(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cached rules = %v, compiled = %v", got, want)
	}
	if st := c.Stats(); st.Misses != 2 {
		t.Errorf("stats = %+v, want two misses", st)
	}
}
