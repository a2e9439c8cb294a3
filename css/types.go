package css

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Placeholder marks the element a compiled rule belongs to. Bind replaces it
// with concrete class selector.
const Placeholder = "&"

// Declaration is single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

func (d Declaration) String() string {
	return d.Property + ": " + d.Value
}

// Rule is a compiled CSS rule. AtRules hold media conditions of its zone,
// e.g. "(max-width: 767px)", which must all hold for the rule to apply.
type Rule struct {
	Selector     string
	Declarations []Declaration
	AtRules      []string
}

// DeclarationText returns declarations as a single line suitable for
// inline use.
func (r Rule) DeclarationText() string {
	parts := make([]string, 0, len(r.Declarations))
	for _, d := range r.Declarations {
		parts = append(parts, d.String()+";")
	}
	return strings.Join(parts, " ")
}

// Get returns value of the last declaration of property.
func (r Rule) Get(property string) (string, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == property {
			return r.Declarations[i].Value, true
		}
	}
	return "", false
}

// Bind returns copy of rules with placeholder replaced by class selector
// (".t0"). Selectors without placeholder are scoped as descendants.
func Bind(rules []Rule, class string) []Rule {
	res := make([]Rule, len(rules))
	for i, r := range rules {
		r.Declarations = slices.Clone(r.Declarations)
		r.AtRules = slices.Clone(r.AtRules)
		if strings.Contains(r.Selector, Placeholder) {
			r.Selector = strings.ReplaceAll(r.Selector, Placeholder, class)
		} else {
			r.Selector = class + " " + r.Selector
		}
		res[i] = r
	}
	return res
}

// MediaQuery is a viewport width condition of a zone.
type MediaQuery struct {
	Raw      string  // condition text without "@media"
	MinWidth float64 // 0 when absent
	MaxWidth float64 // 0 when absent
}

// ParseMediaQuery understands "(min-width: Npx)" and "(max-width: Npx)"
// features joined with "and". Other features are kept in Raw only.
func ParseMediaQuery(raw string) MediaQuery {
	mq := MediaQuery{Raw: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "@media"))}
	for part := range strings.SplitSeq(mq.Raw, " and ") {
		part = strings.Trim(strings.TrimSpace(part), "()")
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		px, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "px"), 64)
		if err != nil {
			continue
		}
		switch strings.TrimSpace(name) {
		case "min-width":
			mq.MinWidth = px
		case "max-width":
			mq.MaxWidth = px
		}
	}
	return mq
}

// Evaluate returns true if query matches viewport of given width.
func (mq MediaQuery) Evaluate(width float64) bool {
	if mq.MinWidth > 0 && width < mq.MinWidth {
		return false
	}
	if mq.MaxWidth > 0 && width > mq.MaxWidth {
		return false
	}
	return true
}

// SheetRule is a rule as it appears in stylesheet text.
type SheetRule struct {
	Selector     string
	Declarations []Declaration
	SourceLine   int
}

// MediaBlock represents a @media block with its query and nested rules.
type MediaBlock struct {
	Query MediaQuery
	Rules []SheetRule
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule or MediaBlock is non-nil.
type StylesheetItem struct {
	Rule       *SheetRule
	MediaBlock *MediaBlock
}

// Stylesheet is an ordered list of rules and media blocks.
type Stylesheet struct {
	Items    []StylesheetItem
	Warnings []string // problems found while reading
}

// NewStylesheet arranges compiled rules into stylesheet. Consecutive rules
// sharing the same at-rule condition go into one media block.
func NewStylesheet(rules []Rule) *Stylesheet {
	sheet := &Stylesheet{}
	for _, r := range rules {
		sr := SheetRule{Selector: r.Selector, Declarations: slices.Clone(r.Declarations)}
		if len(r.AtRules) == 0 {
			sheet.Items = append(sheet.Items, StylesheetItem{Rule: &sr})
			continue
		}
		query := strings.Join(r.AtRules, " and ")
		if n := len(sheet.Items); n > 0 && sheet.Items[n-1].MediaBlock != nil && sheet.Items[n-1].MediaBlock.Query.Raw == ParseMediaQuery(query).Raw {
			mb := sheet.Items[n-1].MediaBlock
			mb.Rules = append(mb.Rules, sr)
			continue
		}
		sheet.Items = append(sheet.Items, StylesheetItem{
			MediaBlock: &MediaBlock{Query: ParseMediaQuery(query), Rules: []SheetRule{sr}},
		})
	}
	return sheet
}

// Append adds items of other stylesheet.
func (s *Stylesheet) Append(other *Stylesheet) {
	s.Items = append(s.Items, other.Items...)
	s.Warnings = append(s.Warnings, other.Warnings...)
}

// Rules returns all rules including ones nested in media blocks.
func (s *Stylesheet) Rules() []SheetRule {
	var rules []SheetRule
	for _, item := range s.Items {
		switch {
		case item.Rule != nil:
			rules = append(rules, *item.Rule)
		case item.MediaBlock != nil:
			rules = append(rules, item.MediaBlock.Rules...)
		}
	}
	return rules
}

// RulesBySelector returns all top-level rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []SheetRule {
	var matches []SheetRule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// RulesAt returns rules applying to viewport of given width: top level rules
// and rules of media blocks matching it.
func (s *Stylesheet) RulesAt(width float64) []SheetRule {
	var rules []SheetRule
	for _, item := range s.Items {
		switch {
		case item.Rule != nil:
			rules = append(rules, *item.Rule)
		case item.MediaBlock != nil && item.MediaBlock.Query.Evaluate(width):
			rules = append(rules, item.MediaBlock.Rules...)
		}
	}
	return rules
}

// MediaBlocks returns all media blocks in source order.
func (s *Stylesheet) MediaBlocks() []MediaBlock {
	var blocks []MediaBlock
	for _, item := range s.Items {
		if item.MediaBlock != nil {
			blocks = append(blocks, *item.MediaBlock)
		}
	}
	return blocks
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Declarations keep their order.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, item := range s.Items {
		var n int
		var err error

		switch {
		case item.MediaBlock != nil:
			n, err = writeMediaBlock(w, item.MediaBlock)
		case item.Rule != nil:
			n, err = writeRule(w, item.Rule, "")
		}

		total += int64(n)
		if err != nil {
			return total, err
		}

		// Add blank line between items (except after last)
		if i < len(s.Items)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// writeRule writes a single CSS rule to w.
func writeRule(w io.Writer, rule *SheetRule, indent string) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, rule.Selector)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range rule.Declarations {
		n, err = fmt.Fprintf(w, "%s  %s: %s;\n", indent, d.Property, d.Value)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

// writeMediaBlock writes an @media block to w.
func writeMediaBlock(w io.Writer, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s {\n", mb.Query.Raw)
	total += n
	if err != nil {
		return total, err
	}

	for i := range mb.Rules {
		n, err = writeRule(w, &mb.Rules[i], "  ")
		total += n
		if err != nil {
			return total, err
		}

		// Blank line between rules in a media block (except after last)
		if i < len(mb.Rules)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}

	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}
