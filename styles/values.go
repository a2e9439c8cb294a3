package styles

import (
	"fmt"
	"strconv"

	"stylec/shorthand"
)

// Values gives handler access to property values effective for one zone
// and one combination of element states. Only properties which have a
// value are present.
type Values struct {
	props  map[string]any
	parser *shorthand.Parser
	err    error
}

// NewValues creates values for direct handler evaluation.
func NewValues(parser *shorthand.Parser, props map[string]any) *Values {
	if parser == nil {
		parser = shorthand.NewParser(nil)
	}
	return &Values{props: props, parser: parser}
}

// Err returns first rendering error.
func (v *Values) Err() error {
	return v.err
}

// Raw returns literal value of property.
func (v *Values) Raw(key string) (any, bool) {
	val, ok := v.props[key]
	return val, ok
}

// Bool reports property boolean value, ok is false for non boolean values.
func (v *Values) Bool(key string) (value, ok bool) {
	b, ok := v.props[key].(bool)
	return b, ok
}

// Text returns property literal as text without rendering.
func (v *Values) Text(key string) (string, bool) {
	switch x := v.props[key].(type) {
	case string:
		return x, true
	case float64:
		return formatNumber(x), true
	}
	return "", false
}

// CSS renders property value through shorthand parser. Numbers are emitted
// as is, booleans yield nothing.
func (v *Values) CSS(key string) (string, bool) {
	switch x := v.props[key].(type) {
	case string:
		return v.Render(key, x)
	case float64:
		return formatNumber(x), true
	}
	return "", false
}

// Length renders property as length: numbers become pixels and true becomes
// dflt.
func (v *Values) Length(key, dflt string) (string, bool) {
	switch x := v.props[key].(type) {
	case bool:
		if x && dflt != "" {
			return dflt, true
		}
		return "", false
	case float64:
		if x == 0 {
			return "0", true
		}
		return formatNumber(x) + "px", true
	case string:
		return v.Render(key, x)
	}
	return "", false
}

// Render renders arbitrary shorthand text, key is used for error reporting.
func (v *Values) Render(key, text string) (string, bool) {
	out, err := v.parser.Parse(text)
	if err != nil {
		if v.err == nil {
			v.err = fmt.Errorf("property %q: %w", key, err)
		}
		return "", false
	}
	return out, out != ""
}

// RenderGroups renders comma separated groups of text separately.
func (v *Values) RenderGroups(key, text string) []string {
	out, err := v.parser.ParseGroups(text)
	if err != nil {
		if v.err == nil {
			v.err = fmt.Errorf("property %q: %w", key, err)
		}
		return nil
	}
	return out
}

// Fail records handler error.
func (v *Values) Fail(err error) {
	if v.err == nil {
		v.err = err
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
