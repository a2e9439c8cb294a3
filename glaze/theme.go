// Package glaze derives light, dark and high contrast color palettes from a
// hue and saturation seed keeping requested contrast between related colors.
package glaze

import (
	"fmt"
	"math"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"stylec/common"
)

// VariantKind identifies one of the four resolved forms of a color.
type VariantKind int

const (
	Light VariantKind = iota
	Dark
	LightContrast
	DarkContrast
)

var variantNames = [...]string{"light", "dark", "lightContrast", "darkContrast"}

func (k VariantKind) String() string {
	if k < 0 || int(k) >= len(variantNames) {
		return fmt.Sprintf("VariantKind(%d)", int(k))
	}
	return variantNames[k]
}

func (k VariantKind) dark() bool {
	return k == Dark || k == DarkContrast
}

func (k VariantKind) highContrast() bool {
	return k == LightContrast || k == DarkContrast
}

// Variant is a resolved color in OKHSL space.
type Variant struct {
	Hue        float64 // degrees
	Saturation float64 // 0..100
	Lightness  float64 // 0..100
	// Contrast ratio against the same variant of base color, 0 without base.
	Contrast float64
	// Met is false when minimum contrast could not be reached.
	Met bool
}

// Linear returns variant as linear sRGB.
func (v Variant) Linear() LinearRGB {
	return FromOKHSL(v.Hue, v.Saturation/100, v.Lightness/100)
}

// ResolvedColor holds all variants of a color.
type ResolvedColor struct {
	Name     string
	Variants [4]Variant
}

// Variant returns resolved variant of requested kind.
func (rc *ResolvedColor) Variant(k VariantKind) Variant {
	return rc.Variants[k]
}

// Resolved is ordered result of theme resolution.
type Resolved = orderedmap.OrderedMap[string, *ResolvedColor]

// Theme is a set of color definitions sharing hue and saturation.
type Theme struct {
	hue        float64
	saturation float64
	colors     *Table
	cfg        Config
	log        *zap.Logger

	resolved *Resolved
}

// Option configures theme.
type Option func(*Theme)

// WithConfig replaces process wide settings for this theme.
func WithConfig(cfg Config) Option {
	return func(t *Theme) {
		t.cfg = cfg
	}
}

// WithLogger sets logger used to report unmet contrast requirements.
func WithLogger(log *zap.Logger) Option {
	return func(t *Theme) {
		if log != nil {
			t.log = log.Named("glaze")
		}
	}
}

// NewTheme creates empty theme. Hue is in degrees, saturation in percent.
func NewTheme(hue, saturation float64, opts ...Option) *Theme {
	t := &Theme{
		hue:        math.Mod(math.Mod(hue, 360)+360, 360),
		saturation: clamp(saturation, 0, 100),
		colors:     NewTable(),
		cfg:        defaults,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Hue returns theme hue in degrees.
func (t *Theme) Hue() float64 {
	return t.hue
}

// Saturation returns theme saturation in percent.
func (t *Theme) Saturation() float64 {
	return t.saturation
}

// Config returns settings theme was created with.
func (t *Theme) Config() Config {
	return t.cfg
}

// Table returns copy of color definitions.
func (t *Theme) Table() *Table {
	return copyTable(t.colors)
}

// Colors replaces all color definitions.
func (t *Theme) Colors(defs *Table) *Theme {
	t.colors = copyTable(defs)
	t.resolved = nil
	return t
}

// ExtendOptions describes derived theme.
type ExtendOptions struct {
	Hue        *float64
	Saturation *float64
	// Definitions merged field by field into existing ones, new names are
	// appended.
	Colors *Table
}

// Extend returns new theme based on this one.
func (t *Theme) Extend(opts ExtendOptions) *Theme {
	res := &Theme{
		hue:        t.hue,
		saturation: t.saturation,
		colors:     copyTable(t.colors),
		cfg:        t.cfg,
		log:        t.log,
	}
	if opts.Hue != nil {
		res.hue = math.Mod(math.Mod(*opts.Hue, 360)+360, 360)
	}
	if opts.Saturation != nil {
		res.saturation = clamp(*opts.Saturation, 0, 100)
	}
	if opts.Colors != nil {
		for p := opts.Colors.Oldest(); p != nil; p = p.Next() {
			if cur, ok := res.colors.Get(p.Key); ok {
				res.colors.Set(p.Key, cur.merge(p.Value))
				continue
			}
			res.colors.Set(p.Key, p.Value)
		}
	}
	return res
}

func copyTable(src *Table) *Table {
	dst := NewTable()
	if src == nil {
		return dst
	}
	for p := src.Oldest(); p != nil; p = p.Next() {
		dst.Set(p.Key, p.Value)
	}
	return dst
}

// Resolve computes all variants of every color. Result is kept until color
// table changes.
func (t *Theme) Resolve() (*Resolved, error) {
	if t.resolved != nil {
		return t.resolved, nil
	}
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}

	for p := t.colors.Oldest(); p != nil; p = p.Next() {
		if err := p.Value.validate(t.colors); err != nil {
			return nil, fmt.Errorf("color %q: %w", p.Key, err)
		}
	}
	order, err := t.order()
	if err != nil {
		return nil, err
	}

	done := make(map[string]*ResolvedColor, len(order))
	for _, name := range order {
		def, _ := t.colors.Get(name)
		rc := &ResolvedColor{Name: name}
		for k := range rc.Variants {
			rc.Variants[k] = t.variant(name, def, done, VariantKind(k))
		}
		done[name] = rc
	}

	res := orderedmap.New[string, *ResolvedColor](orderedmap.WithCapacity[string, *ResolvedColor](len(done)))
	for p := t.colors.Oldest(); p != nil; p = p.Next() {
		res.Set(p.Key, done[p.Key])
	}
	t.resolved = res
	return res, nil
}

// order returns color names so that every base precedes colors derived from
// it.
func (t *Theme) order() ([]string, error) {
	var (
		visiting = make(map[string]bool, t.colors.Len())
		visited  = make(map[string]bool, t.colors.Len())
		stack    []string
		order    = make([]string, 0, t.colors.Len())
	)

	var dfs func(name string) []string
	dfs = func(name string) []string {
		visiting[name] = true
		stack = append(stack, name)

		def, _ := t.colors.Get(name)
		if dep := def.Base; dep != "" && !visited[dep] {
			if visiting[dep] {
				for i, n := range stack {
					if n == dep {
						return append(append([]string{}, stack[i:]...), dep)
					}
				}
			}
			if cycle := dfs(dep); cycle != nil {
				return cycle
			}
		}

		visiting[name] = false
		visited[name] = true
		stack = stack[:len(stack)-1]
		order = append(order, name)
		return nil
	}

	for p := t.colors.Oldest(); p != nil; p = p.Next() {
		if visited[p.Key] {
			continue
		}
		if cycle := dfs(p.Key); cycle != nil {
			return nil, fmt.Errorf("color %q: %w: %s", p.Key, ErrCircularBase, strings.Join(cycle, " -> "))
		}
	}
	return order, nil
}

// applyContrast moves lightness of base by contrast. Positive contrast
// going over 100 is applied downwards, negative one always is.
func applyContrast(base, contrast float64) float64 {
	l := base + contrast
	if contrast >= 0 && l > 100 {
		l = base - contrast
	}
	return clamp(l, 0, 100)
}

// lightness returns lightness of light scheme variant before contrast
// requirements are applied.
func (t *Theme) lightness(def ColorDef, done map[string]*ResolvedColor, hc bool) float64 {
	if def.Lightness != nil {
		return clamp(def.Lightness.Get(hc), 0, 100)
	}
	k := Light
	if hc {
		k = LightContrast
	}
	base := done[def.Base].Variants[k].Lightness
	if def.Contrast == nil {
		return base
	}
	return applyContrast(base, def.Contrast.Get(hc))
}

// darken maps light scheme lightness and saturation into dark scheme.
func (t *Theme) darken(mode common.ColorMode, l, s float64) (float64, float64) {
	lo, hi := t.cfg.DarkLightness[0], t.cfg.DarkLightness[1]
	switch mode {
	case common.ColorModeAuto:
		return (100-l)*(hi-lo)/100 + lo, s * (1 - t.cfg.DarkDesaturation)
	case common.ColorModeFixed:
		return l*(hi-lo)/100 + lo, s
	}
	return l, s
}

func (t *Theme) variant(name string, def ColorDef, done map[string]*ResolvedColor, k VariantKind) Variant {
	v := Variant{
		Hue:        t.hue,
		Saturation: clamp(t.saturation*def.saturation()/100, 0, 100),
		Lightness:  t.lightness(def, done, k.highContrast()),
		Met:        true,
	}
	if k.dark() {
		v.Lightness, v.Saturation = t.darken(def.mode(), v.Lightness, v.Saturation)
	}
	if def.Base == "" {
		return v
	}

	base := done[def.Base].Variants[k].Linear()
	if def.MinContrast == nil {
		v.Contrast = ContrastRatio(v.Linear(), base)
		return v
	}
	sol := SolveLightness(Target{
		Base:        base,
		Hue:         v.Hue,
		Saturation:  v.Saturation,
		Lightness:   v.Lightness,
		MinContrast: def.MinContrast.Ratio,
	})
	v.Lightness, v.Contrast, v.Met = sol.Lightness, sol.Contrast, sol.Met
	if !sol.Met {
		t.log.Warn("Unable to reach minimum contrast",
			zap.String("color", name),
			zap.Stringer("variant", k),
			zap.Float64("required", def.MinContrast.Ratio),
			zap.Float64("best", sol.Contrast))
	}
	return v
}
