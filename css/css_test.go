package css_test

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylec/css"
)

func TestBind(t *testing.T) {
	rules := []css.Rule{
		{Selector: "&", Declarations: []css.Declaration{{Property: "color", Value: "red"}}},
		{Selector: "&:hover .icon", Declarations: []css.Declaration{{Property: "color", Value: "blue"}}},
		{Selector: ".orphan", Declarations: []css.Declaration{{Property: "margin", Value: "0"}}},
	}
	bound := css.Bind(rules, ".t0")

	want := []string{".t0", ".t0:hover .icon", ".t0 .orphan"}
	for i, r := range bound {
		if r.Selector != want[i] {
			t.Errorf("rule %d selector = %q, want %q", i, r.Selector, want[i])
		}
	}
	if rules[0].Selector != "&" {
		t.Error("Bind modified its input")
	}
	bound[0].Declarations[0].Value = "green"
	if rules[0].Declarations[0].Value != "red" {
		t.Error("Bind shares declarations with input")
	}
}

func TestRule_DeclarationText(t *testing.T) {
	r := css.Rule{Declarations: []css.Declaration{
		{Property: "display", Value: "flex"},
		{Property: "gap", Value: "var(--gap)"},
	}}
	if got := r.DeclarationText(); got != "display: flex; gap: var(--gap);" {
		t.Errorf("DeclarationText() = %q", got)
	}
	if v, ok := r.Get("gap"); !ok || v != "var(--gap)" {
		t.Errorf("Get(gap) = %q, %v", v, ok)
	}
	if _, ok := r.Get("color"); ok {
		t.Error("Get(color) found missing property")
	}
}

func TestParseMediaQuery(t *testing.T) {
	tests := []struct {
		raw      string
		min, max float64
		in, out  []float64
	}{
		{"(max-width: 767px)", 0, 767, []float64{320, 767}, []float64{768, 1200}},
		{"@media (max-width: 1023px) and (min-width: 768px)", 768, 1023, []float64{768, 900, 1023}, []float64{767, 1024}},
		{"print", 0, 0, []float64{1, 5000}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mq := css.ParseMediaQuery(tt.raw)
			if mq.MinWidth != tt.min || mq.MaxWidth != tt.max {
				t.Errorf("ParseMediaQuery(%q) = %+v", tt.raw, mq)
			}
			for _, w := range tt.in {
				if !mq.Evaluate(w) {
					t.Errorf("Evaluate(%v) = false, want true", w)
				}
			}
			for _, w := range tt.out {
				if mq.Evaluate(w) {
					t.Errorf("Evaluate(%v) = true, want false", w)
				}
			}
		})
	}
}

func TestStylesheet_RulesAt(t *testing.T) {
	sheet := css.NewStylesheet([]css.Rule{
		{Selector: ".t0", Declarations: []css.Declaration{{Property: "padding", Value: "4px"}}},
		{Selector: ".t0", Declarations: []css.Declaration{{Property: "padding", Value: "2px"}}, AtRules: []string{"(max-width: 767px)"}},
		{Selector: ".t0", Declarations: []css.Declaration{{Property: "gap", Value: "8px"}}, AtRules: []string{"(min-width: 1024px)"}},
	})
	tests := map[float64][]string{
		320:  {"4px", "2px"},
		800:  {"4px"},
		1024: {"4px", "8px"},
	}
	for width, want := range tests {
		var got []string
		for _, r := range sheet.RulesAt(width) {
			got = append(got, r.Declarations[0].Value)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("RulesAt(%v) = %v, want %v", width, got, want)
		}
	}
}

func TestNewStylesheet_WriteTo(t *testing.T) {
	rules := []css.Rule{
		{Selector: ".t0", Declarations: []css.Declaration{{Property: "padding", Value: "var(--gap)"}, {Property: "color", Value: "red"}}},
		{Selector: ".t0:hover", Declarations: []css.Declaration{{Property: "color", Value: "blue"}}},
		{Selector: ".t0", Declarations: []css.Declaration{{Property: "padding", Value: "0"}}, AtRules: []string{"(max-width: 767px)"}},
		{Selector: ".t0:hover", Declarations: []css.Declaration{{Property: "color", Value: "green"}}, AtRules: []string{"(max-width: 767px)"}},
	}
	sheet := css.NewStylesheet(rules)
	if len(sheet.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(sheet.Items))
	}

	want := `.t0 {
  padding: var(--gap);
  color: red;
}

.t0:hover {
  color: blue;
}

@media (max-width: 767px) {
  .t0 {
    padding: 0;
  }

  .t0:hover {
    color: green;
  }
}
`
	if got := sheet.String(); got != want {
		t.Errorf("WriteTo output:\n%s\nwant:\n%s", got, want)
	}
}

func TestParser_ReadBack(t *testing.T) {
	rules := []css.Rule{
		{Selector: ".t0", Declarations: []css.Declaration{{Property: "--gap", Value: "8px"}, {Property: "display", Value: "flex"}}},
		{Selector: `.t0[data-size="l"]:not([data-disabled])`, Declarations: []css.Declaration{{Property: "padding", Value: "calc(2 * var(--gap))"}}},
		{Selector: ".t0", Declarations: []css.Declaration{{Property: "display", Value: "none"}}, AtRules: []string{"(max-width: 767px)"}},
	}
	text := css.NewStylesheet(rules).String()

	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(text), "generated")
	if len(sheet.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", sheet.Warnings)
	}

	top := sheet.RulesBySelector(".t0")
	if len(top) != 1 {
		t.Fatalf("expected one top level .t0 rule, got %d", len(top))
	}
	wantDecls := []css.Declaration{{Property: "--gap", Value: "8px"}, {Property: "display", Value: "flex"}}
	if !reflect.DeepEqual(top[0].Declarations, wantDecls) {
		t.Errorf("declarations = %+v, want %+v", top[0].Declarations, wantDecls)
	}
	if top[0].SourceLine != 1 {
		t.Errorf("source line = %d, want 1", top[0].SourceLine)
	}

	if got := len(sheet.Rules()); got != 3 {
		t.Errorf("Rules() = %d, want 3", got)
	}
	blocks := sheet.MediaBlocks()
	if len(blocks) != 1 || blocks[0].Query.MaxWidth != 767 {
		t.Fatalf("media blocks = %+v", blocks)
	}
	if blocks[0].Rules[0].Declarations[0].Value != "none" {
		t.Errorf("media rule = %+v", blocks[0].Rules[0])
	}
}

func TestParser_Warnings(t *testing.T) {
	input := `
@font-face { font-family: x; }
& { color: red; }
.a, .b:not(.c,.d) { }
`
	sheet := css.NewParser(nil).Parse([]byte(input))

	joined := strings.Join(sheet.Warnings, "\n")
	for _, want := range []string{"unsupported at-rule: @font-face", "unbound selector: &", "empty rule: .a, .b:not(.c,.d)"} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings %q do not mention %q", sheet.Warnings, want)
		}
	}
	if len(sheet.RulesBySelector(".b:not(.c,.d)")) != 1 {
		t.Errorf("selector list split inside :not(): %+v", sheet.Rules())
	}
}

func TestIsCustomPropertyName(t *testing.T) {
	for _, name := range []string{"gap", "brand-color", "x1"} {
		if !css.IsCustomPropertyName(name) {
			t.Errorf("IsCustomPropertyName(%q) = false", name)
		}
	}
	for _, name := range []string{"", "a b", "a;b"} {
		if css.IsCustomPropertyName(name) {
			t.Errorf("IsCustomPropertyName(%q) = true", name)
		}
	}
}
