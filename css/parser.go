package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser reads stylesheets back, it is used to verify generated output.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// IsCustomPropertyName reports whether name (without leading "--") forms a
// valid custom property.
func IsCustomPropertyName(name string) bool {
	return name != "" && css.IsIdent([]byte("--"+name))
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	lines := newLineIndex(data)
	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if !p.parseError(parser, sheet) {
				return sheet
			}

		case css.BeginAtRuleGrammar:
			atRule := string(data)
			if atRule != "@media" {
				p.skipAtRuleBlock(parser)
				sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+atRule)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
				continue
			}
			mq := ParseMediaQuery(joinTokens(parser.Values()))
			rules := p.parseMediaBlockRules(parser, sheet, lines)
			p.log.Debug("Parsed @media block", zap.String("query", mq.Raw), zap.Int("rules", len(rules)))
			sheet.Items = append(sheet.Items, StylesheetItem{
				MediaBlock: &MediaBlock{Query: mq, Rules: rules},
			})

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+string(data))

		case css.BeginRulesetGrammar:
			for _, r := range p.parseRuleset(parser, data, sheet, lines) {
				sheet.Items = append(sheet.Items, StylesheetItem{Rule: &r})
			}
		}
	}
}

// parseError records recoverable parse error. It returns false when input
// is exhausted.
func (p *Parser) parseError(parser *css.Parser, sheet *Stylesheet) bool {
	if !parser.HasParseError() {
		return false
	}
	sheet.Warnings = append(sheet.Warnings, parser.Err().Error())
	p.log.Debug("CSS parse error", zap.Error(parser.Err()))
	return true
}

// parseRuleset reads declarations of the ruleset which just started and
// returns one rule per selector of the group.
func (p *Parser) parseRuleset(parser *css.Parser, data []byte, sheet *Stylesheet, lines lineIndex) []SheetRule {
	line := lines.at(parser.Offset())
	selectors := parseSelectors(data, parser.Values())
	decls := p.parseDeclarations(parser, sheet)
	if len(decls) == 0 {
		sheet.Warnings = append(sheet.Warnings, "empty rule: "+strings.Join(selectors, ", "))
	}
	rules := make([]SheetRule, 0, len(selectors))
	for _, sel := range selectors {
		if strings.Contains(sel, Placeholder) {
			sheet.Warnings = append(sheet.Warnings, "unbound selector: "+sel)
		}
		rules = append(rules, SheetRule{
			Selector:     sel,
			Declarations: append([]Declaration(nil), decls...),
			SourceLine:   line,
		})
	}
	return rules
}

// parseSelectors extracts selector strings from token data.
func parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	// Split by comma for grouped selectors, commas inside :not() and
	// attribute values do not separate
	var (
		selectors []string
		depth     int
		start     int
		str       = sb.String()
	)
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(str[start:i]); s != "" {
					selectors = append(selectors, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(str[start:]); s != "" {
		selectors = append(selectors, s)
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if !p.parseError(parser, sheet) {
				return decls
			}

		case css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) == 0 {
				sheet.Warnings = append(sheet.Warnings, "empty value: "+string(data))
				continue
			}
			decls = append(decls, Declaration{Property: string(data), Value: joinTokens(values)})

		case css.CustomPropertyGrammar:
			name := string(data)
			if !IsCustomPropertyName(strings.TrimPrefix(name, "--")) {
				sheet.Warnings = append(sheet.Warnings, "invalid custom property: "+name)
			}
			decls = append(decls, Declaration{Property: name, Value: strings.TrimSpace(joinTokens(parser.Values()))})
		}
	}
}

// joinTokens builds value text from tokens collapsing whitespace.
func joinTokens(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if !parser.HasParseError() {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseMediaBlockRules parses rules inside an @media block and returns them.
func (p *Parser) parseMediaBlockRules(parser *css.Parser, sheet *Stylesheet, lines lineIndex) []SheetRule {
	var rules []SheetRule
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if !p.parseError(parser, sheet) {
				return rules
			}
		case css.EndAtRuleGrammar:
			return rules
		case css.BeginRulesetGrammar:
			rules = append(rules, p.parseRuleset(parser, data, sheet, lines)...)
		}
	}
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(data []byte) lineIndex {
	idx := lineIndex{0}
	for i, c := range data {
		if c == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) at(offset int) int {
	lo, hi := 0, len(l)
	for lo < hi {
		mid := (lo + hi) / 2
		if l[mid] <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
