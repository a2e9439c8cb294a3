package styles

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMerge_ExtendAppendsNewState(t *testing.T) {
	base := New().Set("fill", States("", "#a", "hover", "#b"))
	layer := New().Set("fill", Extending("pressed", "#c"))

	got := Merge(base, layer)
	fill, _ := got.Get("fill")
	want := States("", "#a", "hover", "#b", "pressed", "#c")
	if !Equal(fill, want) {
		t.Errorf("fill = %v, want %v", fill, want)
	}

	// inputs are untouched
	if sm, _ := base.Get("fill"); sm.(*StateMap).Len() != 2 {
		t.Errorf("base modified")
	}
}

func TestMerge_Tombstone(t *testing.T) {
	got := Merge(New().Set("fill", "#a"), New().Set("fill", nil))
	if _, ok := got.Get("fill"); ok {
		t.Errorf("fill must be removed by tombstone")
	}
}

func TestMerge_AbsentKeepsValue(t *testing.T) {
	got := Merge(New().Set("fill", "#a").Set("color", "#b"), New().Set("color", "#c"))
	if v, _ := got.Get("fill"); v != "#a" {
		t.Errorf("fill = %v, want #a", v)
	}
	if v, _ := got.Get("color"); v != "#c" {
		t.Errorf("color = %v, want #c", v)
	}
}

func TestMerge_ExtendOrdering(t *testing.T) {
	base := New().Set("fill", States("", "#a", "hover", "#b", "focus", "#c"))
	layer := New().Set("fill", Extending("hover", "#B", "", Inherit, "pressed", "#p", "focus", nil))

	got := Merge(base, layer)
	fill, _ := got.Get("fill")
	want := States("hover", "#B", "", "#a", "pressed", "#p")
	if !Equal(fill, want) {
		t.Errorf("fill = %v, want %v", fill.(*StateMap).Keys(), want.Keys())
	}
}

func TestMerge_ExtendLiteralBase(t *testing.T) {
	got := Merge(New().Set("fill", "#a"), New().Set("fill", Extending("hover", "#b")))
	fill, _ := got.Get("fill")
	if want := States("", "#a", "hover", "#b"); !Equal(fill, want) {
		t.Errorf("fill = %v", fill)
	}
}

func TestMerge_ExtendNothing(t *testing.T) {
	got := Merge(New().Set("fill", false), New().Set("fill", Extending("hover", "#b", "focus", Inherit, "pressed", nil)))
	fill, _ := got.Get("fill")
	if want := States("hover", "#b"); !Equal(fill, want) {
		t.Errorf("fill = %v", fill)
	}
}

func TestMerge_ReplaceStateMap(t *testing.T) {
	base := New().Set("fill", States("", "#a", "hover", "#b", "focus", "#c"))
	layer := New().Set("fill", States("focus", Inherit, "", "#x", "hover", nil))

	got := Merge(base, layer)
	fill, _ := got.Get("fill")
	if want := States("focus", "#c", "", "#x"); !Equal(fill, want) {
		t.Errorf("fill = %v", fill.(*StateMap).Keys())
	}
}

func TestMerge_InheritLiteral(t *testing.T) {
	got := Merge(New().Set("fill", "#a"), New().Set("fill", Inherit))
	if v, _ := got.Get("fill"); v != "#a" {
		t.Errorf("fill = %v, want #a", v)
	}
}

func TestMerge_Slots(t *testing.T) {
	base := New().
		Set("Icon", New().Set("color", "#a").Set("fill", "#b")).
		Set("Label", New().Set("color", "#c"))
	layer := New().
		Set("Icon", New().Set("fill", nil).Set("radius", true)).
		Set("Label", false)

	got := Merge(base, layer)
	if _, ok := got.Get("Label"); ok {
		t.Errorf("Label slot must be removed")
	}
	icon, _ := got.Get("Icon")
	want := New().Set("color", "#a").Set("radius", true)
	if !Equal(icon, want) {
		t.Errorf("Icon = %v, want %v", icon.(*Description).Keys(), want.Keys())
	}
}

func TestMerge_Associative(t *testing.T) {
	a := New().
		Set("fill", States("", "#a", "hover", "#b")).
		Set("padding", "1x").
		Set("Icon", New().Set("color", "#x"))
	b := New().
		Set("fill", Extending("pressed", "#c", "", "#z")).
		Set("padding", nil).
		Set("radius", []any{"1r", "2r"}).
		Set("Icon", New().Set("color", nil).Set("fill", "#y"))
	c := New().
		Set("fill", Extending("hover", Inherit)).
		Set("padding", "2x").
		Set("radius", Inherit).
		Set("Icon", false)

	left := Merge(Merge(a, b), c)
	all := Merge(a, b, c)
	if !Equal(left, all) {
		t.Errorf("merge is not associative: %v vs %v", left.Keys(), all.Keys())
	}

	fill, _ := all.Get("fill")
	if want := States("", "#z", "pressed", "#c", "hover", "#b"); !Equal(fill, want) {
		t.Errorf("fill = %v", fill.(*StateMap).Keys())
	}
	if v, _ := all.Get("padding"); v != "2x" {
		t.Errorf("padding = %v", v)
	}
}

func TestMerge_DanglingInheritDiagnostics(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	layer := New().Set("fill", States("hover", Inherit, "", "#a"))

	got := NewMerger(zap.New(core), false).Merge(New(), layer)
	fill, _ := got.Get("fill")
	if !Equal(fill, States("", "#a")) {
		t.Errorf("fill = %v", fill)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if f := logs.All()[0].ContextMap()["state"]; f != "hover" {
		t.Errorf("state field = %v", f)
	}

	core, logs = observer.New(zap.WarnLevel)
	NewMerger(zap.New(core), true).Merge(New(), layer)
	if logs.Len() != 0 {
		t.Errorf("production merger must be silent, got %d entries", logs.Len())
	}
}
