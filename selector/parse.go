package selector

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

var (
	// ErrSyntax is returned for malformed conditions.
	ErrSyntax = errors.New("invalid state condition")
	// ErrUnknownAlias is returned when condition references alias which is not defined.
	ErrUnknownAlias = errors.New("unknown selector alias")
)

// Aliases maps alias names (without leading '@') to condition text.
type Aliases map[string]string

var defaultAliases = Aliases{
	"hover":         ":hover",
	"focus":         ":focus-visible",
	"active":        ":active",
	"disabled":      ":disabled",
	"dark":          `[data-schema="dark"]`,
	"high-contrast": `[data-contrast="more"]`,
}

// DefaultAliases returns copy of process wide alias table.
func DefaultAliases() Aliases {
	return maps.Clone(defaultAliases)
}

// SetDefaultAliases replaces process wide alias table. Not synchronized,
// call before compiling.
func SetDefaultAliases(a Aliases) {
	defaultAliases = maps.Clone(a)
}

// Merge returns copy of aliases with other added on top.
func (a Aliases) Merge(other Aliases) Aliases {
	res := maps.Clone(a)
	if res == nil {
		res = make(Aliases, len(other))
	}
	maps.Copy(res, other)
	return res
}

// Parse parses condition. Alias references are expanded using aliases, nil
// means default table.
func Parse(src string, aliases Aliases) (*Expr, error) {
	if aliases == nil {
		aliases = defaultAliases
	}
	p := &parser{src: src, aliases: aliases}
	p.skip()
	if p.eof() {
		return &Expr{Op: OpTrue}, nil
	}
	e, err := p.or()
	if err != nil {
		return nil, err
	}
	p.skip()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

type parser struct {
	src     string
	pos     int
	aliases Aliases
	nested  bool // parsing alias body
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) skip() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q at %d: %s", ErrSyntax, p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) or() (*Expr, error) {
	return p.binary(OpOr, '|', p.and)
}

func (p *parser) and() (*Expr, error) {
	return p.binary(OpAnd, '&', p.unary)
}

func (p *parser) binary(op Op, sym byte, next func() (*Expr, error)) (*Expr, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	args := []*Expr{first}
	for {
		p.skip()
		if p.eof() || p.src[p.pos] != sym {
			break
		}
		p.pos++
		e, err := next()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	if len(args) == 1 {
		return first, nil
	}
	return &Expr{Op: op, Args: args}, nil
}

func (p *parser) unary() (*Expr, error) {
	p.skip()
	if !p.eof() && p.src[p.pos] == '!' {
		p.pos++
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpNot, Args: []*Expr{e}}, nil
	}
	return p.primary()
}

func (p *parser) primary() (*Expr, error) {
	p.skip()
	if p.eof() {
		return nil, p.errorf("unexpected end of condition")
	}
	switch c := p.src[p.pos]; c {
	case '(':
		p.pos++
		e, err := p.or()
		if err != nil {
			return nil, err
		}
		p.skip()
		if p.eof() || p.src[p.pos] != ')' {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
		return e, nil
	case '[':
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end < 0 {
			return nil, p.errorf("missing ']'")
		}
		text := p.src[p.pos : p.pos+end+1]
		p.pos += end + 1
		return atom(AtomRaw, text, ""), nil
	case ':':
		return p.pseudo()
	case '.':
		start := p.pos
		p.pos++
		if p.ident() == "" {
			return nil, p.errorf("empty class name")
		}
		return atom(AtomClass, p.src[start:p.pos], ""), nil
	case '@':
		p.pos++
		return p.alias()
	}
	name := p.ident()
	if name == "" {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	p.skip()
	if p.eof() || p.src[p.pos] != '=' {
		return atom(AtomFlag, name, ""), nil
	}
	p.pos++
	p.skip()
	value, err := p.value()
	if err != nil {
		return nil, err
	}
	return atom(AtomEqual, name, value), nil
}

func atom(kind AtomKind, name, value string) *Expr {
	return &Expr{Op: OpAtom, Atom: Atom{Kind: kind, Name: name, Value: value}}
}

func isIdentChar(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) value() (string, error) {
	if p.eof() {
		return "", p.errorf("missing value")
	}
	if q := p.src[p.pos]; q == '"' || q == '\'' {
		end := strings.IndexByte(p.src[p.pos+1:], q)
		if end < 0 {
			return "", p.errorf("unterminated string")
		}
		v := p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return v, nil
	}
	start := p.pos
	for !p.eof() && !strings.ContainsRune(" \t&|!()", rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("missing value")
	}
	return p.src[start:p.pos], nil
}

// pseudo scans pseudo class including optional parenthesized argument.
func (p *parser) pseudo() (*Expr, error) {
	start := p.pos
	for !p.eof() && p.src[p.pos] == ':' {
		p.pos++
	}
	if p.ident() == "" {
		return nil, p.errorf("empty pseudo class")
	}
	if !p.eof() && p.src[p.pos] == '(' {
		depth := 0
		for ; !p.eof(); p.pos++ {
			switch p.src[p.pos] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				p.pos++
				break
			}
		}
		if depth != 0 {
			return nil, p.errorf("unbalanced pseudo class argument")
		}
	}
	return atom(AtomPseudo, p.src[start:p.pos], ""), nil
}

func (p *parser) alias() (*Expr, error) {
	name := p.ident()
	if name == "" {
		return nil, p.errorf("empty alias name")
	}
	if p.nested {
		return nil, fmt.Errorf("%w: alias @%s used inside another alias", ErrUnknownAlias, name)
	}
	body, ok := p.aliases[name]
	if !ok {
		return nil, fmt.Errorf("%w: @%s", ErrUnknownAlias, name)
	}
	sub := &parser{src: body, aliases: p.aliases, nested: true}
	sub.skip()
	if sub.eof() {
		return &Expr{Op: OpTrue}, nil
	}
	e, err := sub.or()
	if err != nil {
		return nil, fmt.Errorf("alias @%s: %w", name, err)
	}
	sub.skip()
	if !sub.eof() {
		return nil, fmt.Errorf("alias @%s: %w", name, sub.errorf("unexpected %q", sub.src[sub.pos:]))
	}
	return e, nil
}
