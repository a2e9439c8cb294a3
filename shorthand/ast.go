package shorthand

import "strings"

// colorFunctions are absorbed as a single opaque color literal, their
// arguments are never unit converted.
var colorFunctions = map[string]bool{
	"rgb":   true,
	"rgba":  true,
	"hsl":   true,
	"hsla":  true,
	"okhsl": true,
	"oklch": true,
	"oklab": true,
	"hwb":   true,
}

// Build groups flat tokens starting at index start into a tree and returns
// the nodes of the top level together with the index where building stopped.
// An unmatched ")" stops the level and is left at the returned index, an
// unclosed level is closed at the end of input.
func Build(tokens []Token, start int) ([]Token, int) {
	b := &builder{tokens: tokens}
	return b.level(start, 0)
}

type builder struct {
	tokens     []Token
	unbalanced bool
}

func (b *builder) level(i, depth int) ([]Token, int) {
	var nodes []Token
	for i < len(b.tokens) {
		t := b.tokens[i]
		switch {
		case t.Type == TokenText && t.Value == ")":
			if depth == 0 {
				b.unbalanced = true
				return nodes, i
			}
			return nodes, i + 1
		case t.Type == TokenPropertyRef:
			nodes = append(nodes, Token{
				Type:     TokenFunction,
				Value:    "var",
				Children: []Token{{Type: TokenPropertyName, Value: t.Value}},
			})
			i++
		case t.Type == TokenFunction && colorFunctions[strings.ToLower(t.Value)]:
			var raw string
			raw, i = b.absorb(i)
			nodes = append(nodes, Token{Type: TokenColor, Value: raw})
		case t.opens():
			node := t
			node.Children, i = b.level(i+1, depth+1)
			nodes = append(nodes, node)
		default:
			nodes = append(nodes, t)
			i++
		}
	}
	if depth > 0 {
		b.unbalanced = true
	}
	return nodes, i
}

// absorb collects raw text of the function starting at i up to and including
// its matching close paren.
func (b *builder) absorb(i int) (string, int) {
	var sb strings.Builder
	depth := 0
	for ; i < len(b.tokens); i++ {
		t := b.tokens[i]
		sb.WriteString(t.source())
		switch {
		case t.opens():
			depth++
		case t.Type == TokenText && t.Value == ")":
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
		}
	}
	b.unbalanced = true
	sb.WriteString(strings.Repeat(")", depth))
	return sb.String(), i
}
