package styles

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"stylec/css"
	"stylec/shorthand"
)

// ErrInvalidProperty is returned for custom property and color token keys
// which do not form valid CSS identifiers.
var ErrInvalidProperty = errors.New("invalid custom property name")

// Handler converts related raw properties into CSS declarations. Evaluate
// is called once per zone and element state combination with values of
// lookup keys effective there.
type Handler interface {
	Name() string
	LookupKeys() []string
	Evaluate(v *Values) []css.Declaration
}

// Handlers is the static handler table, registration order defines
// declaration order in compiled rules. Properties not claimed by any of them
// go to color token, custom property and generic handlers, in that order.
var Handlers = []Handler{
	displayHandler{},
	flowHandler{},
	gapHandler{},
	boxHandler{name: "padding"},
	boxHandler{name: "margin"},
	sizeHandler{name: "width", dflt: "100%"},
	sizeHandler{name: "height", dflt: "100%"},
	insetHandler{},
	fillHandler{},
	colorHandler{},
	lineHandler{name: "border", dflt: "var(--border-width) solid var(--border-color)"},
	lineHandler{name: "outline", dflt: "var(--outline-width) solid var(--outline-color)", offset: "outlineOffset"},
	radiusHandler{},
	shadowHandler{},
	presetHandler{},
	transitionHandler{},
}

var handlerIndex = func() map[string][]int {
	idx := make(map[string][]int)
	for i, h := range Handlers {
		for _, k := range h.LookupKeys() {
			idx[k] = append(idx[k], i)
		}
	}
	return idx
}()

// dynamic handler kinds, in registration order
const (
	kindColorToken = iota
	kindCustomProperty
	kindGeneric
)

// keyHandler returns handler for property not claimed by static table.
func keyHandler(key string) (Handler, int) {
	switch {
	case strings.HasPrefix(key, "#"):
		return colorTokenHandler{key: key}, kindColorToken
	case strings.HasPrefix(key, "$"):
		return customPropertyHandler{key: key}, kindCustomProperty
	}
	return genericHandler{key: key}, kindGeneric
}

func decl(property, value string) css.Declaration {
	return css.Declaration{Property: property, Value: value}
}

var directions = []string{"top", "right", "bottom", "left"}

// splitDirections separates direction keywords from the rest of value.
func splitDirections(text string, allowed []string) (dirs []string, rest string) {
	var other []string
	for _, w := range shorthand.Words(text) {
		if slices.Contains(allowed, w) {
			if !slices.Contains(dirs, w) {
				dirs = append(dirs, w)
			}
			continue
		}
		other = append(other, w)
	}
	return dirs, strings.Join(other, " ")
}

type displayHandler struct{}

func (displayHandler) Name() string         { return "display" }
func (displayHandler) LookupKeys() []string { return []string{"display", "hide"} }

func (displayHandler) Evaluate(v *Values) []css.Declaration {
	if hide, _ := v.Bool("hide"); hide {
		return []css.Declaration{decl("display", "none")}
	}
	if d, ok := v.CSS("display"); ok {
		return []css.Declaration{decl("display", d)}
	}
	return nil
}

// flowHandler sets direction of flex or grid container depending on display.
type flowHandler struct{}

func (flowHandler) Name() string         { return "flow" }
func (flowHandler) LookupKeys() []string { return []string{"flow", "display"} }

func (flowHandler) Evaluate(v *Values) []css.Declaration {
	flow, ok := v.CSS("flow")
	if !ok {
		return nil
	}
	display, _ := v.Text("display")
	switch {
	case strings.Contains(display, "grid"):
		return []css.Declaration{decl("grid-auto-flow", flow)}
	case display == "" || strings.Contains(display, "flex"):
		return []css.Declaration{decl("flex-flow", flow)}
	}
	return nil
}

type gapHandler struct{}

func (gapHandler) Name() string         { return "gap" }
func (gapHandler) LookupKeys() []string { return []string{"gap"} }

func (gapHandler) Evaluate(v *Values) []css.Declaration {
	if g, ok := v.Length("gap", "var(--gap)"); ok {
		return []css.Declaration{decl("gap", g)}
	}
	return nil
}

// boxHandler handles padding and margin with optional side keywords:
// "2x top bottom" sets only the named sides.
type boxHandler struct {
	name string
}

var boxSides = []string{"top", "right", "bottom", "left", "block", "inline"}

func (h boxHandler) Name() string { return h.name }

func (h boxHandler) LookupKeys() []string {
	keys := []string{h.name}
	for _, s := range boxSides {
		keys = append(keys, h.name+capitalize(s))
	}
	return keys
}

func (h boxHandler) Evaluate(v *Values) []css.Declaration {
	var res []css.Declaration
	if text, ok := v.Raw(h.name); ok {
		switch x := text.(type) {
		case string:
			dirs, rest := splitDirections(x, boxSides)
			if rest == "" {
				rest = "1x"
			}
			if value, ok := v.Render(h.name, rest); ok {
				if len(dirs) == 0 {
					res = append(res, decl(h.name, value))
				}
				for _, d := range dirs {
					res = append(res, decl(h.name+"-"+d, value))
				}
			}
		default:
			if value, ok := v.Length(h.name, "var(--gap)"); ok {
				res = append(res, decl(h.name, value))
			}
		}
	}
	for _, s := range boxSides {
		if value, ok := v.Length(h.name+capitalize(s), "var(--gap)"); ok {
			res = append(res, decl(h.name+"-"+s, value))
		}
	}
	return res
}

// sizeHandler handles width and height: one value sets the size, two values
// set minimum and maximum, three set minimum, size and maximum. Leading
// "min", "max" or "fixed" keyword targets specific properties.
type sizeHandler struct {
	name string
	dflt string
}

func (h sizeHandler) Name() string { return h.name }

func (h sizeHandler) LookupKeys() []string {
	return []string{h.name, "min" + capitalize(h.name), "max" + capitalize(h.name)}
}

func (h sizeHandler) Evaluate(v *Values) []css.Declaration {
	var (
		res      []css.Declaration
		min, max = "min-" + h.name, "max-" + h.name
	)
	if raw, ok := v.Raw(h.name); ok {
		if text, isText := raw.(string); isText {
			words := shorthand.Words(text)
			render := func(ws []string) []string {
				out := make([]string, 0, len(ws))
				for _, w := range ws {
					if r, ok := v.Render(h.name, w); ok {
						out = append(out, r)
					}
				}
				return out
			}
			switch {
			case len(words) > 1 && words[0] == "min":
				res = append(res, decl(min, strings.Join(render(words[1:]), " ")))
			case len(words) > 1 && words[0] == "max":
				res = append(res, decl(max, strings.Join(render(words[1:]), " ")))
			case len(words) > 1 && words[0] == "fixed":
				value := strings.Join(render(words[1:]), " ")
				res = append(res, decl(min, value), decl(h.name, value), decl(max, value))
			default:
				switch r := render(words); len(r) {
				case 0:
				case 1:
					res = append(res, decl(h.name, r[0]))
				case 2:
					res = append(res, decl(min, r[0]), decl(max, r[1]))
				default:
					res = append(res, decl(min, r[0]), decl(h.name, r[1]), decl(max, r[2]))
				}
			}
		} else if value, ok := v.Length(h.name, h.dflt); ok {
			res = append(res, decl(h.name, value))
		}
	}
	if value, ok := v.Length("min"+capitalize(h.name), ""); ok {
		res = append(res, decl(min, value))
	}
	if value, ok := v.Length("max"+capitalize(h.name), ""); ok {
		res = append(res, decl(max, value))
	}
	return res
}

type insetHandler struct{}

func (insetHandler) Name() string { return "inset" }

func (insetHandler) LookupKeys() []string {
	return append([]string{"inset"}, directions...)
}

func (insetHandler) Evaluate(v *Values) []css.Declaration {
	var res []css.Declaration
	if value, ok := v.Length("inset", "0"); ok {
		res = append(res, decl("inset", value))
	}
	for _, d := range directions {
		if value, ok := v.Length(d, "0"); ok {
			res = append(res, decl(d, value))
		}
	}
	return res
}

type fillHandler struct{}

func (fillHandler) Name() string         { return "fill" }
func (fillHandler) LookupKeys() []string { return []string{"fill"} }

func (fillHandler) Evaluate(v *Values) []css.Declaration {
	if b, ok := v.Bool("fill"); ok {
		if b {
			return []css.Declaration{decl("background-color", "var(--fill-color)")}
		}
		return nil
	}
	if value, ok := v.CSS("fill"); ok {
		return []css.Declaration{decl("background-color", value)}
	}
	return nil
}

type colorHandler struct{}

func (colorHandler) Name() string         { return "color" }
func (colorHandler) LookupKeys() []string { return []string{"color"} }

func (colorHandler) Evaluate(v *Values) []css.Declaration {
	if b, ok := v.Bool("color"); ok {
		if b {
			return []css.Declaration{decl("color", "currentColor")}
		}
		return nil
	}
	if value, ok := v.CSS("color"); ok {
		return []css.Declaration{decl("color", value)}
	}
	return nil
}

// lineHandler handles border and outline. Side keywords limit the line to
// named sides, missing width, style and color fall back to dflt.
type lineHandler struct {
	name   string
	dflt   string
	offset string
}

func (h lineHandler) Name() string { return h.name }

func (h lineHandler) LookupKeys() []string {
	if h.offset != "" {
		return []string{h.name, h.offset}
	}
	return []string{h.name}
}

func (h lineHandler) Evaluate(v *Values) []css.Declaration {
	var res []css.Declaration
	value, dirs := "", []string(nil)
	switch x, _ := v.Raw(h.name); x := x.(type) {
	case bool:
		if x {
			value = h.dflt
		}
	case float64:
		if x == 0 {
			value = "none"
		} else {
			value = formatNumber(x) + "px solid var(--" + h.name + "-color)"
		}
	case string:
		var rest string
		dirs, rest = splitDirections(x, directions)
		if rest == "" {
			value = h.dflt
		} else if r, ok := v.Render(h.name, rest); ok {
			value = r
		}
	}
	if value != "" {
		if len(dirs) == 0 {
			res = append(res, decl(h.name, value))
		}
		for _, d := range dirs {
			res = append(res, decl(h.name+"-"+d, value))
		}
	}
	if h.offset != "" {
		if off, ok := v.Length(h.offset, ""); ok {
			res = append(res, decl(h.name+"-offset", off))
		}
	}
	return res
}

type radiusHandler struct{}

func (radiusHandler) Name() string         { return "radius" }
func (radiusHandler) LookupKeys() []string { return []string{"radius"} }

var radiusCorners = map[string][]string{
	"top":    {"top-left", "top-right"},
	"right":  {"top-right", "bottom-right"},
	"bottom": {"bottom-left", "bottom-right"},
	"left":   {"top-left", "bottom-left"},
}

func (radiusHandler) Evaluate(v *Values) []css.Declaration {
	raw, _ := v.Raw("radius")
	text, isText := raw.(string)
	if !isText {
		if value, ok := v.Length("radius", "var(--radius)"); ok {
			return []css.Declaration{decl("border-radius", value)}
		}
		return nil
	}
	dirs, rest := splitDirections(text, directions)
	var value string
	switch rest {
	case "", "1r":
		value = "var(--radius)"
	case "round":
		value = "9999px"
	default:
		r, ok := v.Render("radius", rest)
		if !ok {
			return nil
		}
		value = r
	}
	if len(dirs) == 0 {
		return []css.Declaration{decl("border-radius", value)}
	}
	var corners []string
	for _, d := range dirs {
		for _, c := range radiusCorners[d] {
			if !slices.Contains(corners, c) {
				corners = append(corners, c)
			}
		}
	}
	res := make([]css.Declaration, 0, len(corners))
	for _, c := range corners {
		res = append(res, decl("border-"+c+"-radius", value))
	}
	return res
}

type shadowHandler struct{}

func (shadowHandler) Name() string         { return "shadow" }
func (shadowHandler) LookupKeys() []string { return []string{"shadow"} }

func (shadowHandler) Evaluate(v *Values) []css.Declaration {
	if b, ok := v.Bool("shadow"); ok {
		if b {
			return []css.Declaration{decl("box-shadow", "var(--shadow)")}
		}
		return nil
	}
	text, ok := v.Text("shadow")
	if !ok {
		return nil
	}
	groups := v.RenderGroups("shadow", text)
	if len(groups) == 0 {
		return nil
	}
	return []css.Declaration{decl("box-shadow", strings.Join(groups, ", "))}
}

// presetHandler applies typography preset: font size, line height, letter
// spacing and weight come from preset variables unless given explicitly.
type presetHandler struct{}

func (presetHandler) Name() string { return "preset" }

func (presetHandler) LookupKeys() []string {
	return []string{"preset", "fontSize", "lineHeight", "letterSpacing", "fontWeight"}
}

func (presetHandler) Evaluate(v *Values) []css.Declaration {
	var (
		name      string
		modifiers []string
	)
	if text, ok := v.Text("preset"); ok {
		if words := shorthand.Words(text); len(words) > 0 {
			name, modifiers = words[0], words[1:]
		}
	}
	fromPreset := func(suffix string) (string, bool) {
		if name == "" {
			return "", false
		}
		return "var(--" + name + "-" + suffix + ")", true
	}

	var res []css.Declaration
	if value, ok := v.Length("fontSize", ""); ok {
		res = append(res, decl("font-size", value))
	} else if value, ok := fromPreset("font-size"); ok {
		res = append(res, decl("font-size", value))
	}
	if value, ok := v.CSS("lineHeight"); ok {
		res = append(res, decl("line-height", value))
	} else if value, ok := fromPreset("line-height"); ok {
		res = append(res, decl("line-height", value))
	}
	if value, ok := v.Length("letterSpacing", ""); ok {
		res = append(res, decl("letter-spacing", value))
	} else if value, ok := fromPreset("letter-spacing"); ok {
		res = append(res, decl("letter-spacing", value))
	}
	switch value, ok := v.CSS("fontWeight"); {
	case ok:
		res = append(res, decl("font-weight", value))
	case slices.Contains(modifiers, "strong"):
		res = append(res, decl("font-weight", "var(--bold-font-weight)"))
	default:
		if value, ok := fromPreset("font-weight"); ok {
			res = append(res, decl("font-weight", value))
		}
	}
	if slices.Contains(modifiers, "italic") {
		res = append(res, decl("font-style", "italic"))
	}
	if slices.Contains(modifiers, "uppercase") {
		res = append(res, decl("text-transform", "uppercase"))
	}
	return res
}

// transitionHandler expands named transition groups: "fill .2s, radius"
// gives "background-color .2s, border-radius var(--transition)".
type transitionHandler struct{}

func (transitionHandler) Name() string         { return "transition" }
func (transitionHandler) LookupKeys() []string { return []string{"transition"} }

var transitionNames = map[string][]string{
	"fill":    {"background-color"},
	"color":   {"color"},
	"border":  {"border-color"},
	"outline": {"outline-color", "outline-offset"},
	"radius":  {"border-radius"},
	"shadow":  {"box-shadow"},
	"inset":   {"inset"},
	"theme":   {"color", "background-color", "border-color", "box-shadow", "outline-color"},
	"all":     {"all"},
}

func (transitionHandler) Evaluate(v *Values) []css.Declaration {
	text, ok := v.Text("transition")
	if !ok {
		return nil
	}
	var parts []string
	for _, g := range shorthand.Groups(shorthand.Tokenize(text)) {
		words := shorthand.Words(shorthand.String(g))
		if len(words) == 0 {
			continue
		}
		props, ok := transitionNames[words[0]]
		if !ok {
			props = []string{kebab(words[0])}
		}
		timing := "var(--transition)"
		if len(words) > 1 {
			r, ok := v.Render("transition", strings.Join(words[1:], " "))
			if !ok {
				continue
			}
			timing = r
		}
		for _, p := range props {
			parts = append(parts, p+" "+timing)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return []css.Declaration{decl("transition", strings.Join(parts, ", "))}
}

// colorTokenHandler defines color token "#name" as --name-color.
type colorTokenHandler struct {
	key string
}

func (h colorTokenHandler) Name() string         { return h.key }
func (h colorTokenHandler) LookupKeys() []string { return []string{h.key} }

func (h colorTokenHandler) Evaluate(v *Values) []css.Declaration {
	name := strings.TrimPrefix(h.key, "#") + "-color"
	if !css.IsCustomPropertyName(name) {
		v.Fail(fmt.Errorf("color token %q: %w", h.key, ErrInvalidProperty))
		return nil
	}
	if value, ok := v.CSS(h.key); ok {
		return []css.Declaration{decl("--"+name, value)}
	}
	return nil
}

// customPropertyHandler defines "$name" as --name.
type customPropertyHandler struct {
	key string
}

func (h customPropertyHandler) Name() string         { return h.key }
func (h customPropertyHandler) LookupKeys() []string { return []string{h.key} }

func (h customPropertyHandler) Evaluate(v *Values) []css.Declaration {
	name := strings.TrimPrefix(h.key, "$")
	if !css.IsCustomPropertyName(name) {
		v.Fail(fmt.Errorf("custom property %q: %w", h.key, ErrInvalidProperty))
		return nil
	}
	if value, ok := v.CSS(h.key); ok {
		return []css.Declaration{decl("--"+name, value)}
	}
	return nil
}

// genericHandler passes property through with name converted to kebab case.
type genericHandler struct {
	key string
}

func (h genericHandler) Name() string         { return h.key }
func (h genericHandler) LookupKeys() []string { return []string{h.key} }

func (h genericHandler) Evaluate(v *Values) []css.Declaration {
	if value, ok := v.CSS(h.key); ok {
		return []css.Declaration{decl(kebab(h.key), value)}
	}
	return nil
}

// kebab converts camelCase property name to CSS form.
func kebab(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			// leading capital is a vendor prefix: WebkitLineClamp
			sb.WriteByte('-')
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
