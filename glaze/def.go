package glaze

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"stylec/common"
)

// Validation errors reported by Resolve.
var (
	ErrContrastWithoutBase = errors.New("contrast requires base color")
	ErrUnknownBase         = errors.New("unknown base color")
	ErrCircularBase        = errors.New("circular base reference")
	ErrNoLightness         = errors.New("neither lightness nor base color is defined")
	ErrAmbiguousDef        = errors.New("lightness cannot be combined with base color or contrast")
)

// Pair is a number with optional high contrast alternative. In YAML it is
// either a number or [normal, high-contrast].
type Pair struct {
	Normal       float64
	HighContrast float64
	HasHC        bool
}

// P is shortcut for a pair without high contrast member.
func P(v float64) *Pair {
	return &Pair{Normal: v}
}

// PHC is shortcut for a pair with high contrast member.
func PHC(normal, hc float64) *Pair {
	return &Pair{Normal: normal, HighContrast: hc, HasHC: true}
}

// Get returns member for requested contrast level.
func (p *Pair) Get(hc bool) float64 {
	if hc && p.HasHC {
		return p.HighContrast
	}
	return p.Normal
}

func (p *Pair) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = Pair{}
		return node.Decode(&p.Normal)
	case yaml.SequenceNode:
		var vals []float64
		if err := node.Decode(&vals); err != nil {
			return err
		}
		if len(vals) != 2 {
			return fmt.Errorf("line %d: expected [normal, high-contrast], got %d values", node.Line, len(vals))
		}
		*p = Pair{Normal: vals[0], HighContrast: vals[1], HasHC: true}
		return nil
	}
	return fmt.Errorf("line %d: expected number or pair of numbers", node.Line)
}

func (p Pair) MarshalYAML() (any, error) {
	if !p.HasHC {
		return p.Normal, nil
	}
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []float64{p.Normal, p.HighContrast} {
		var item yaml.Node
		if err := item.Encode(v); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &item)
	}
	return n, nil
}

// ColorDef describes one theme color. It has either its own lightness or
// base color and contrast relative to it.
type ColorDef struct {
	Lightness *Pair `yaml:"lightness,omitempty"`
	// Percent of theme saturation, 100 when not set.
	Saturation  *float64          `yaml:"saturation,omitempty"`
	Base        string            `yaml:"base,omitempty"`
	Contrast    *Pair             `yaml:"contrast,omitempty"`
	MinContrast *MinContrast      `yaml:"min_contrast,omitempty"`
	Mode        *common.ColorMode `yaml:"mode,omitempty"`
}

func (d *ColorDef) UnmarshalYAML(node *yaml.Node) error {
	type plain ColorDef
	return decodeKnownFields(node, "ColorDef", (*plain)(d))
}

// decodeKnownFields decodes node into out rejecting mapping keys absent from
// yaml tags of out. Values decoded through orderedmap do not inherit
// KnownFields of the outer decoder.
func decodeKnownFields[T any](node *yaml.Node, typeName string, out *T) error {
	if node.Kind == yaml.MappingNode {
		known := make(map[string]bool)
		t := reflect.TypeFor[T]()
		for i := range t.NumField() {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
			known[name] = true
		}
		for i := 0; i < len(node.Content); i += 2 {
			if k := node.Content[i]; !known[k.Value] {
				return fmt.Errorf("line %d: field %s not found in type %s", k.Line, k.Value, typeName)
			}
		}
	}
	return node.Decode(out)
}

// Table is ordered set of color definitions.
type Table = orderedmap.OrderedMap[string, ColorDef]

// NewTable creates table from name, definition pairs.
func NewTable(pairs ...orderedmap.Pair[string, ColorDef]) *Table {
	return orderedmap.New[string, ColorDef](orderedmap.WithInitialData(pairs...))
}

// Def is shortcut to build NewTable arguments.
func Def(name string, def ColorDef) orderedmap.Pair[string, ColorDef] {
	return orderedmap.Pair[string, ColorDef]{Key: name, Value: def}
}

func (d ColorDef) mode() common.ColorMode {
	if d.Mode == nil {
		return common.ColorModeAuto
	}
	return *d.Mode
}

func (d ColorDef) saturation() float64 {
	if d.Saturation == nil {
		return 100
	}
	return *d.Saturation
}

func (d ColorDef) validate(table *Table) error {
	hasBase := d.Base != ""
	switch {
	case d.Lightness != nil && (hasBase || d.Contrast != nil):
		return ErrAmbiguousDef
	case d.Contrast != nil && !hasBase:
		return ErrContrastWithoutBase
	case d.Lightness == nil && !hasBase:
		return ErrNoLightness
	}
	if hasBase {
		if _, ok := table.Get(d.Base); !ok {
			return fmt.Errorf("%w %q", ErrUnknownBase, d.Base)
		}
	}
	return nil
}

// merge applies fields set in other on top of d. Setting lightness drops
// base and contrast and the other way around.
func (d ColorDef) merge(other ColorDef) ColorDef {
	if other.Lightness != nil {
		d.Lightness, d.Base, d.Contrast = other.Lightness, "", nil
	}
	if other.Base != "" || other.Contrast != nil {
		d.Lightness = nil
		if other.Base != "" {
			d.Base = other.Base
		}
		if other.Contrast != nil {
			d.Contrast = other.Contrast
		}
	}
	if other.Saturation != nil {
		d.Saturation = other.Saturation
	}
	if other.MinContrast != nil {
		d.MinContrast = other.MinContrast
	}
	if other.Mode != nil {
		d.Mode = other.Mode
	}
	return d
}

// Mode returns pointer to m for use in ColorDef literals.
func Mode(m common.ColorMode) *common.ColorMode {
	return &m
}

// Float returns pointer to v for use in ColorDef literals.
func Float(v float64) *float64 {
	return &v
}
