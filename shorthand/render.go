package shorthand

import (
	"math"
	"strconv"
	"strings"
)

// mathFunctions render nested brackets as plain parentheses.
var mathFunctions = map[string]bool{
	"calc":  true,
	"min":   true,
	"max":   true,
	"clamp": true,
	"round": true,
	"mod":   true,
	"rem":   true,
	"abs":   true,
	"sign":  true,
}

// Render walks nodes produced by Build and returns CSS text.
func Render(nodes []Token, reg *Registry) string {
	if reg == nil {
		reg = defaultRegistry
	}
	var sb strings.Builder
	renderNodes(&sb, nodes, reg, false)
	return sb.String()
}

func renderNodes(sb *strings.Builder, nodes []Token, reg *Registry, inMath bool) {
	for _, n := range nodes {
		renderNode(sb, n, reg, inMath)
	}
}

func renderNode(sb *strings.Builder, n Token, reg *Registry, inMath bool) {
	switch n.Type {
	case TokenSpace:
		sb.WriteByte(' ')
	case TokenColor:
		sb.WriteString(renderColor(n.Value))
	case TokenPropertyName:
		sb.WriteString("--" + n.Value)
	case TokenPropertyRef:
		// only seen when rendering tokens which did not go through Build
		sb.WriteString("var(--" + n.Value + ")")
	case TokenValue:
		if n.HasAmount && n.Unit != "" {
			if u, ok := reg.Unit(n.Unit); ok {
				sb.WriteString(u.render(n.Amount, n.Value[:len(n.Value)-len(n.Unit)]))
				return
			}
		}
		sb.WriteString(n.Value)
	case TokenBracket:
		if inMath {
			sb.WriteByte('(')
		} else {
			sb.WriteString("calc(")
		}
		renderNodes(sb, n.Children, reg, true)
		sb.WriteByte(')')
	case TokenFunction:
		if fn, ok := reg.Func(n.Value); ok {
			sb.WriteString(fn(renderArgs(n.Children, reg)))
			return
		}
		sb.WriteString(n.Value)
		sb.WriteByte('(')
		renderNodes(sb, n.Children, reg, inMath || mathFunctions[strings.ToLower(n.Value)])
		sb.WriteByte(')')
	default:
		sb.WriteString(n.Value)
	}
}

// renderArgs renders comma separated arguments of a function node.
func renderArgs(children []Token, reg *Registry) []string {
	var (
		args []string
		cur  []Token
	)
	for _, c := range children {
		if c.Type == TokenText && c.Value == "," {
			args = append(args, strings.TrimSpace(Render(cur, reg)))
			cur = nil
			continue
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 || len(args) > 0 {
		args = append(args, strings.TrimSpace(Render(cur, reg)))
	}
	return args
}

func isHex(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// renderColor expands color references. Absorbed color functions and hex
// literals are returned unchanged.
func renderColor(v string) string {
	name, ok := strings.CutPrefix(v, "#")
	if !ok {
		return v
	}
	var opacity string
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name, opacity = name[:i], name[i:]
	}
	switch {
	case name == "" || isHex(name):
		return v
	case name == "current":
		if opacity == "" {
			return "currentColor"
		}
		f, err := strconv.ParseFloat(opacity, 64)
		if err != nil {
			return "currentColor"
		}
		pct := strconv.FormatFloat(math.Round(f*1e4)/1e2, 'f', -1, 64)
		return "color-mix(in srgb, currentColor " + pct + "%, transparent)"
	case opacity == "":
		return "var(--" + name + "-color)"
	}
	return "rgb(var(--" + name + "-color-rgb) / " + opacity + ")"
}
