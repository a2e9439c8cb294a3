package glaze

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"stylec/common"
	"stylec/css"
	"stylec/styles"
)

// Format renders variant in requested notation.
func (v Variant) Format(f common.ColorFormat) string {
	switch f {
	case common.ColorFormatRgb:
		r, g, b := v.srgb().RGB255()
		return fmt.Sprintf("rgb(%d %d %d)", r, g, b)
	case common.ColorFormatHex:
		return v.srgb().Hex()
	case common.ColorFormatOklch:
		l, c, h := v.srgb().OkLch()
		return fmt.Sprintf("oklch(%s%% %s %s)", num(l*100), strconv.FormatFloat(round(c, 4), 'f', -1, 64), num(h))
	}
	return fmt.Sprintf("okhsl(%s %s%% %s%%)", num(v.Hue), num(v.Saturation), num(v.Lightness))
}

// RGB returns space separated 0..255 channels suitable for rgb() with alpha.
func (v Variant) RGB() string {
	r, g, b := v.srgb().RGB255()
	return fmt.Sprintf("%d %d %d", r, g, b)
}

func (v Variant) srgb() colorful.Color {
	c := v.Linear().Clamped()
	return colorful.LinearRgb(c.R, c.G, c.B).Clamped()
}

func round(x float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(x*p) / p
}

func num(x float64) string {
	return strconv.FormatFloat(round(x, 2), 'f', -1, 64)
}

// ExportOptions controls which variants are exported and how.
type ExportOptions struct {
	Modes  Modes
	States StateAliases
	Format common.ColorFormat
	// Add "-rgb" companion custom properties to descriptions.
	RGB bool
}

// ExportOptions returns options derived from theme settings.
func (t *Theme) ExportOptions() ExportOptions {
	return ExportOptions{
		Modes:  t.cfg.Modes,
		States: t.cfg.States,
		Format: t.cfg.Format,
	}
}

type exported struct {
	kind  VariantKind
	state string
}

func (o *ExportOptions) variants() []exported {
	res := []exported{{Light, o.States.Light}}
	if o.Modes.Dark {
		res = append(res, exported{Dark, o.States.Dark})
	}
	if o.Modes.HighContrast {
		res = append(res, exported{LightContrast, o.States.HighContrast})
	}
	if o.Modes.Dark && o.Modes.HighContrast {
		res = append(res, exported{DarkContrast, o.States.DarkHighContrast})
	}
	return res
}

// Tokens maps "#name" to state condition and formatted color.
type Tokens = orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, string]]

func tokens(colors []*ResolvedColor, opts ExportOptions) *Tokens {
	res := orderedmap.New[string, *orderedmap.OrderedMap[string, string]]()
	for _, rc := range colors {
		states := orderedmap.New[string, string]()
		for _, e := range opts.variants() {
			states.Set(e.state, rc.Variants[e.kind].Format(opts.Format))
		}
		res.Set("#"+rc.Name, states)
	}
	return res
}

func exportJSON(colors []*ResolvedColor, opts ExportOptions) *Tokens {
	res := orderedmap.New[string, *orderedmap.OrderedMap[string, string]]()
	for _, rc := range colors {
		variants := orderedmap.New[string, string]()
		for _, e := range opts.variants() {
			variants.Set(e.kind.String(), rc.Variants[e.kind].Format(opts.Format))
		}
		res.Set(rc.Name, variants)
	}
	return res
}

func description(colors []*ResolvedColor, opts ExportOptions) *styles.Description {
	vars := opts.variants()
	value := func(fn func(v Variant) string, rc *ResolvedColor) any {
		if len(vars) == 1 {
			return fn(rc.Variants[vars[0].kind])
		}
		sm := styles.NewStateMap()
		for _, e := range vars {
			sm.Set(e.state, fn(rc.Variants[e.kind]))
		}
		return sm
	}
	format := func(v Variant) string { return v.Format(opts.Format) }

	desc := styles.New()
	for _, rc := range colors {
		desc.Set("#"+rc.Name, value(format, rc))
		if opts.RGB {
			desc.Set("$"+rc.Name+"-color-rgb", value(Variant.RGB, rc))
		}
	}
	return desc
}

func stylesheet(desc *styles.Description, compiler *styles.Compiler, selector string) (*css.Stylesheet, error) {
	if compiler == nil {
		compiler = styles.NewCompiler(nil)
	}
	rules, err := compiler.Compile(desc, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to compile theme: %w", err)
	}
	return css.NewStylesheet(css.Bind(rules, selector)), nil
}

func (t *Theme) list() ([]*ResolvedColor, error) {
	resolved, err := t.Resolve()
	if err != nil {
		return nil, err
	}
	res := make([]*ResolvedColor, 0, resolved.Len())
	for p := resolved.Oldest(); p != nil; p = p.Next() {
		res = append(res, p.Value)
	}
	return res, nil
}

func (t *Theme) options(opts *ExportOptions) ExportOptions {
	if opts == nil {
		return t.ExportOptions()
	}
	return *opts
}

// Tokens exports theme as "#name" entries keyed by state conditions. Nil
// options use theme settings.
func (t *Theme) Tokens(opts *ExportOptions) (*Tokens, error) {
	colors, err := t.list()
	if err != nil {
		return nil, err
	}
	return tokens(colors, t.options(opts)), nil
}

// JSON exports theme as color name to variant name mapping.
func (t *Theme) JSON(opts *ExportOptions) (*Tokens, error) {
	colors, err := t.list()
	if err != nil {
		return nil, err
	}
	return exportJSON(colors, t.options(opts)), nil
}

// Description exports theme tokens as style description ready to be
// compiled.
func (t *Theme) Description(opts *ExportOptions) (*styles.Description, error) {
	colors, err := t.list()
	if err != nil {
		return nil, err
	}
	return description(colors, t.options(opts)), nil
}

// CSS compiles theme custom properties scoped to selector (usually ":root").
// Nil compiler means default one.
func (t *Theme) CSS(opts *ExportOptions, compiler *styles.Compiler, selector string) (*css.Stylesheet, error) {
	desc, err := t.Description(opts)
	if err != nil {
		return nil, err
	}
	return stylesheet(desc, compiler, selector)
}
