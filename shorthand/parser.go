package shorthand

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stylec/utils/debug"
)

// ErrUnbalanced is returned by strict parser when value has unmatched
// parentheses.
var ErrUnbalanced = errors.New("unbalanced parentheses")

// Parser converts shorthand values into CSS text.
type Parser struct {
	reg    *Registry
	strict bool
	log    *zap.Logger
}

// Option configures Parser.
type Option func(*Parser)

// WithRegistry makes parser use reg instead of DefaultRegistry().
func WithRegistry(reg *Registry) Option {
	return func(p *Parser) {
		if reg != nil {
			p.reg = reg
		}
	}
}

// WithStrict turns unbalanced input into an error.
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// NewParser creates parser. Nil logger is allowed.
func NewParser(log *zap.Logger, opts ...Option) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Parser{
		reg: defaultRegistry,
		log: log.Named("shorthand"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns registry parser renders with.
func (p *Parser) Registry() *Registry {
	return p.reg
}

// AST tokenizes value and builds its tree. In lenient mode anything after an
// unmatched close paren is dropped.
func (p *Parser) AST(value string) ([]Token, error) {
	tokens := Tokenize(value)
	b := &builder{tokens: tokens}
	nodes, next := b.level(0, 0)
	if b.unbalanced {
		if p.strict {
			return nil, fmt.Errorf("value %q: %w", value, ErrUnbalanced)
		}
		p.log.Debug("Unbalanced shorthand value", zap.String("value", value), zap.String("dropped", String(tokens[next:])))
	}
	return nodes, nil
}

// Parse renders single shorthand value.
func (p *Parser) Parse(value string) (string, error) {
	nodes, err := p.AST(value)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(Render(nodes, p.reg)), nil
}

// ParseGroups renders every top level comma separated group of value
// separately (stacked shadows, transitions).
func (p *Parser) ParseGroups(value string) ([]string, error) {
	groups := Groups(Tokenize(value))
	res := make([]string, 0, len(groups))
	for _, g := range groups {
		b := &builder{tokens: g}
		nodes, _ := b.level(0, 0)
		if b.unbalanced && p.strict {
			return nil, fmt.Errorf("value %q: %w", value, ErrUnbalanced)
		}
		res = append(res, Render(nodes, p.reg))
	}
	return res, nil
}

// Dump returns indented text representation of the tree, used by the
// command line tool for diagnostics.
func Dump(nodes []Token) string {
	tw := debug.NewTreeWriter()
	dumpNodes(tw, nodes, 0)
	return tw.String()
}

func dumpNodes(tw *debug.TreeWriter, nodes []Token, depth int) {
	for _, n := range nodes {
		switch {
		case n.opens():
			label := n.Type.String()
			if n.Value != "" {
				label += " " + n.Value
			}
			tw.Node(depth, label, func(depth int) {
				dumpNodes(tw, n.Children, depth)
			})
		case n.HasAmount:
			tw.Line(depth, "%s %q amount=%g unit=%q", n.Type, n.Value, n.Amount, n.Unit)
		default:
			tw.TextBlock(depth, n.Type.String(), n.Value)
		}
	}
}
