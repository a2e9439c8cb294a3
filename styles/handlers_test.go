package styles

import (
	"reflect"
	"testing"

	"stylec/css"
)

func evaluate(h Handler, props map[string]any) ([]css.Declaration, error) {
	v := NewValues(nil, props)
	decls := h.Evaluate(v)
	return decls, v.Err()
}

func decls(pairs ...string) []css.Declaration {
	var res []css.Declaration
	for i := 0; i+1 < len(pairs); i += 2 {
		res = append(res, css.Declaration{Property: pairs[i], Value: pairs[i+1]})
	}
	return res
}

func TestHandlers(t *testing.T) {
	border := lineHandler{name: "border", dflt: "var(--border-width) solid var(--border-color)"}
	tests := []struct {
		name  string
		h     Handler
		props map[string]any
		want  []css.Declaration
	}{
		{"hide wins", displayHandler{}, map[string]any{"display": "flex", "hide": true}, decls("display", "none")},
		{"display", displayHandler{}, map[string]any{"display": "flex", "hide": false}, decls("display", "flex")},
		{"flow flex", flowHandler{}, map[string]any{"flow": "column wrap"}, decls("flex-flow", "column wrap")},
		{"flow grid", flowHandler{}, map[string]any{"flow": "column", "display": "inline-grid"}, decls("grid-auto-flow", "column")},
		{"flow block", flowHandler{}, map[string]any{"flow": "column", "display": "block"}, nil},
		{"gap true", gapHandler{}, map[string]any{"gap": true}, decls("gap", "var(--gap)")},
		{"padding sides", boxHandler{name: "padding"}, map[string]any{"padding": "2x top bottom"},
			decls("padding-top", "calc(2 * var(--gap))", "padding-bottom", "calc(2 * var(--gap))")},
		{"padding side keys", boxHandler{name: "padding"}, map[string]any{"padding": 4.0, "paddingInline": "1x"},
			decls("padding", "4px", "padding-inline", "var(--gap)")},
		{"margin side only", boxHandler{name: "margin"}, map[string]any{"margin": "left"}, decls("margin-left", "var(--gap)")},
		{"width", sizeHandler{name: "width", dflt: "100%"}, map[string]any{"width": "10x"}, decls("width", "calc(10 * var(--gap))")},
		{"width range", sizeHandler{name: "width", dflt: "100%"}, map[string]any{"width": "100px 300px"},
			decls("min-width", "100px", "max-width", "300px")},
		{"width triple", sizeHandler{name: "width", dflt: "100%"}, map[string]any{"width": "1px 50% 2px"},
			decls("min-width", "1px", "width", "50%", "max-width", "2px")},
		{"width fixed", sizeHandler{name: "width", dflt: "100%"}, map[string]any{"width": "fixed 20px"},
			decls("min-width", "20px", "width", "20px", "max-width", "20px")},
		{"height true", sizeHandler{name: "height", dflt: "100%"}, map[string]any{"height": true, "maxHeight": 200.0},
			decls("height", "100%", "max-height", "200px")},
		{"inset", insetHandler{}, map[string]any{"inset": true, "top": 10.0}, decls("inset", "0", "top", "10px")},
		{"fill true", fillHandler{}, map[string]any{"fill": true}, decls("background-color", "var(--fill-color)")},
		{"fill opacity", fillHandler{}, map[string]any{"fill": "#purple.10"}, decls("background-color", "rgb(var(--purple-color-rgb) / .10)")},
		{"color true", colorHandler{}, map[string]any{"color": true}, decls("color", "currentColor")},
		{"border default", border, map[string]any{"border": true}, decls("border", "var(--border-width) solid var(--border-color)")},
		{"border sides", border, map[string]any{"border": "top bottom"},
			decls("border-top", "var(--border-width) solid var(--border-color)", "border-bottom", "var(--border-width) solid var(--border-color)")},
		{"border value", border, map[string]any{"border": "1bw dashed #danger left"}, decls("border-left", "var(--border-width) dashed var(--danger-color)")},
		{"border none", border, map[string]any{"border": 0.0}, decls("border", "none")},
		{"outline offset", lineHandler{name: "outline", dflt: "o", offset: "outlineOffset"}, map[string]any{"outlineOffset": 2.0},
			decls("outline-offset", "2px")},
		{"radius true", radiusHandler{}, map[string]any{"radius": true}, decls("border-radius", "var(--radius)")},
		{"radius round", radiusHandler{}, map[string]any{"radius": "round"}, decls("border-radius", "9999px")},
		{"radius number", radiusHandler{}, map[string]any{"radius": 4.0}, decls("border-radius", "4px")},
		{"radius corners", radiusHandler{}, map[string]any{"radius": "2r top left"},
			decls("border-top-left-radius", "calc(2 * var(--radius))", "border-top-right-radius", "calc(2 * var(--radius))",
				"border-bottom-left-radius", "calc(2 * var(--radius))")},
		{"shadow groups", shadowHandler{}, map[string]any{"shadow": "0 1px 2px #shadow, inset 0 0 0 1bw #border"},
			decls("box-shadow", "0 1px 2px var(--shadow-color), inset 0 0 0 var(--border-width) var(--border-color)")},
		{"preset", presetHandler{}, map[string]any{"preset": "h1 strong", "fontSize": 20.0},
			decls("font-size", "20px", "line-height", "var(--h1-line-height)", "letter-spacing", "var(--h1-letter-spacing)",
				"font-weight", "var(--bold-font-weight)")},
		{"preset explicit weight", presetHandler{}, map[string]any{"preset": "t3 italic", "fontWeight": 600.0},
			decls("font-size", "var(--t3-font-size)", "line-height", "var(--t3-line-height)", "letter-spacing", "var(--t3-letter-spacing)",
				"font-weight", "600", "font-style", "italic")},
		{"line height alone", presetHandler{}, map[string]any{"lineHeight": 1.5}, decls("line-height", "1.5")},
		{"transition", transitionHandler{}, map[string]any{"transition": "fill .2s, radius"},
			decls("transition", "background-color .2s, border-radius var(--transition)")},
		{"transition unknown", transitionHandler{}, map[string]any{"transition": "maxHeight 1s linear"},
			decls("transition", "max-height 1s linear")},
		{"color token", colorTokenHandler{key: "#accent"}, map[string]any{"#accent": "rgb(0 0 0)"}, decls("--accent-color", "rgb(0 0 0)")},
		{"custom property", customPropertyHandler{key: "$gap"}, map[string]any{"$gap": "2x"}, decls("--gap", "calc(2 * var(--gap))")},
		{"generic", genericHandler{key: "WebkitLineClamp"}, map[string]any{"WebkitLineClamp": 3.0}, decls("-webkit-line-clamp", "3")},
		{"generic bool", genericHandler{key: "userSelect"}, map[string]any{"userSelect": true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluate(tt.h, tt.props)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandlerIndex(t *testing.T) {
	// display is shared by display and flow handlers
	if got := handlerIndex["display"]; len(got) != 2 {
		t.Errorf("display handlers = %v", got)
	}
	for _, key := range []string{"paddingTop", "minWidth", "outlineOffset", "fontSize", "top"} {
		if _, ok := handlerIndex[key]; !ok {
			t.Errorf("%s is not claimed by static handler", key)
		}
	}
	if _, kind := keyHandler("#accent"); kind != kindColorToken {
		t.Errorf("#accent kind = %d", kind)
	}
	if _, kind := keyHandler("$gap"); kind != kindCustomProperty {
		t.Errorf("$gap kind = %d", kind)
	}
	if _, kind := keyHandler("cursor"); kind != kindGeneric {
		t.Errorf("cursor kind = %d", kind)
	}
}

func TestKebab(t *testing.T) {
	tests := map[string]string{
		"backgroundColor":  "background-color",
		"WebkitLineClamp":  "-webkit-line-clamp",
		"msFlex":           "ms-flex",
		"already-kebab":    "already-kebab",
		"gridTemplateArea": "grid-template-area",
	}
	for in, want := range tests {
		if got := kebab(in); got != want {
			t.Errorf("kebab(%q) = %q, want %q", in, got, want)
		}
	}
}
