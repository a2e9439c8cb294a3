package glaze

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is returned for contrast preset names which are not
// defined.
var ErrUnknownPreset = errors.New("unknown contrast preset")

var presets = map[string]float64{
	"AA":        4.5,
	"AAA":       7,
	"AA-large":  3,
	"AAA-large": 4.5,
}

// ResolveMinContrast turns preset name or number into contrast ratio.
// Numbers below 1 are raised to 1.
func ResolveMinContrast(v any) (float64, error) {
	switch val := v.(type) {
	case string:
		if r, ok := presets[val]; ok {
			return r, nil
		}
		for name, r := range presets {
			if strings.EqualFold(name, val) {
				return r, nil
			}
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownPreset, val)
	case float64:
		return math.Max(1, val), nil
	case int:
		return math.Max(1, float64(val)), nil
	case MinContrast:
		return val.Ratio, nil
	case *MinContrast:
		if val == nil {
			return 1, nil
		}
		return val.Ratio, nil
	}
	return 0, fmt.Errorf("unsupported minimum contrast value %T", v)
}

// MinContrast is a contrast requirement, preset or explicit ratio.
type MinContrast struct {
	Preset string
	Ratio  float64
}

// NewMinContrast resolves v with ResolveMinContrast.
func NewMinContrast(v any) (*MinContrast, error) {
	r, err := ResolveMinContrast(v)
	if err != nil {
		return nil, err
	}
	mc := &MinContrast{Ratio: r}
	if s, ok := v.(string); ok {
		mc.Preset = s
	}
	return mc, nil
}

func (mc *MinContrast) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: minimum contrast must be preset name or number", node.Line)
	}
	var v any = node.Value
	if node.Tag == "!!int" || node.Tag == "!!float" {
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		v = f
	}
	res, err := NewMinContrast(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*mc = *res
	return nil
}

func (mc MinContrast) MarshalYAML() (any, error) {
	if mc.Preset != "" {
		return mc.Preset, nil
	}
	return mc.Ratio, nil
}

// Target describes lightness search for a color which has to keep contrast
// with base color.
type Target struct {
	Base        LinearRGB
	Hue         float64 // degrees
	Saturation  float64 // 0..100
	Lightness   float64 // preferred, 0..100
	MinContrast float64
	// Allowed lightness range, empty range means 0..100.
	Min, Max float64
}

// Solution is the outcome of lightness search.
type Solution struct {
	Lightness float64
	Contrast  float64
	Met       bool
}

const (
	scanStep   = 0.5
	bisections = 24
)

type solver struct {
	Target
	best Solution
}

func (s *solver) ratio(l float64) float64 {
	c := FromOKHSL(s.Hue, s.Saturation/100, l/100)
	r := ContrastRatio(c, s.Base)
	if r > s.best.Contrast {
		s.best = Solution{Lightness: l, Contrast: r}
	}
	return r
}

// scan walks away from preferred lightness in direction dir until contrast
// is satisfied or the range ends.
func (s *solver) scan(dir float64) (Solution, bool) {
	prev := s.Lightness
	for i := 1; ; i++ {
		l := clamp(s.Lightness+dir*float64(i)*scanStep, s.Min, s.Max)
		if l == prev {
			return Solution{}, false
		}
		if s.ratio(l) >= s.MinContrast {
			return s.bisect(prev, l), true
		}
		prev = l
	}
}

func (s *solver) bisect(fail, pass float64) Solution {
	for range bisections {
		mid := (fail + pass) / 2
		if s.ratio(mid) >= s.MinContrast {
			pass = mid
		} else {
			fail = mid
		}
	}
	return Solution{Lightness: pass, Contrast: s.ratio(pass), Met: true}
}

// SolveLightness finds lightness closest to preferred one which satisfies
// minimal contrast against base. When no lightness in range satisfies it
// result has Met set to false and carries the best contrast seen.
func SolveLightness(t Target) Solution {
	if t.Max <= t.Min {
		t.Min, t.Max = 0, 100
	}
	t.MinContrast = math.Max(1, t.MinContrast)
	t.Lightness = clamp(t.Lightness, t.Min, t.Max)

	s := &solver{Target: t}
	if r := s.ratio(t.Lightness); r >= t.MinContrast {
		return Solution{Lightness: t.Lightness, Contrast: r, Met: true}
	}

	down, okDown := s.scan(-1)
	up, okUp := s.scan(1)
	switch {
	case okDown && okUp:
		if math.Abs(up.Lightness-t.Lightness) < math.Abs(down.Lightness-t.Lightness) {
			return up
		}
		return down
	case okDown:
		return down
	case okUp:
		return up
	}
	return s.best
}
