package styles

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"stylec/css"
	"stylec/selector"
	"stylec/shorthand"
)

// Compiler turns style descriptions into CSS rules.
type Compiler struct {
	parser  *shorthand.Parser
	aliases selector.Aliases
	prefix  string
	merger  *Merger
	log     *zap.Logger
}

// Option configures compiler.
type Option func(*Compiler)

// WithParser sets shorthand parser used to render values.
func WithParser(p *shorthand.Parser) Option {
	return func(c *Compiler) {
		c.parser = p
	}
}

// WithAliases sets selector alias table, nil means process-wide defaults.
func WithAliases(a selector.Aliases) Option {
	return func(c *Compiler) {
		c.aliases = a
	}
}

// WithAttributePrefix sets prefix of element state attributes ("data-").
func WithAttributePrefix(prefix string) Option {
	return func(c *Compiler) {
		c.prefix = prefix
	}
}

// WithMerger sets merger used to normalize descriptions.
func WithMerger(m *Merger) Option {
	return func(c *Compiler) {
		c.merger = m
	}
}

func NewCompiler(log *zap.Logger, opts ...Option) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Compiler{prefix: "data-", log: log.Named("compiler")}
	for _, opt := range opts {
		opt(c)
	}
	if c.parser == nil {
		c.parser = shorthand.NewParser(log)
	}
	if c.merger == nil {
		c.merger = NewMerger(log, false)
	}
	return c
}

var defaultCompiler = NewCompiler(nil)

// Compile compiles description with default compiler.
func Compile(desc *Description, breakpoints []float64) ([]css.Rule, error) {
	return defaultCompiler.Compile(desc, breakpoints)
}

// Compile returns one rule per resolved selector and zone. Selectors are
// relative to css.Placeholder. Within a rule declarations follow handler
// registration order, rules of wider zones come first.
func (c *Compiler) Compile(desc *Description, breakpoints []float64) ([]css.Rule, error) {
	rb := &ruleBuilder{index: make(map[string]int)}
	cc := &compilation{
		Compiler: c,
		zones:    Zones(breakpoints),
		exprs:    make(map[string]*selector.Expr),
		rules:    rb,
	}
	if err := cc.description(c.merger.Merge(desc), ""); err != nil {
		return nil, err
	}
	rules := rb.result()
	c.log.Debug("Description compiled", zap.Int("rules", len(rules)), zap.Int("zones", len(cc.zones)))
	return rules, nil
}

// compilation holds state of a single Compile call.
type compilation struct {
	*Compiler
	zones []Zone
	exprs map[string]*selector.Expr
	rules *ruleBuilder
}

// description compiles properties of one element, suffix addresses the
// element relative to the host.
func (cc *compilation) description(desc *Description, suffix string) error {
	var (
		static  = make([]bool, len(Handlers))
		dynamic [3][]Handler
	)
	for _, key := range desc.Keys() {
		if IsSlotKey(key) || strings.HasPrefix(key, "@") {
			continue
		}
		if idx, ok := handlerIndex[key]; ok {
			for _, i := range idx {
				static[i] = true
			}
			continue
		}
		h, kind := keyHandler(key)
		dynamic[kind] = append(dynamic[kind], h)
	}

	var handlers []Handler
	for i, used := range static {
		if used {
			handlers = append(handlers, Handlers[i])
		}
	}
	for _, hs := range dynamic {
		handlers = append(handlers, hs...)
	}
	for _, h := range handlers {
		if err := cc.handler(desc, h, suffix); err != nil {
			return err
		}
	}

	for _, key := range desc.Keys() {
		if !IsSlotKey(key) {
			continue
		}
		value, _ := desc.Get(key)
		slot, ok := value.(*Description)
		if !ok {
			cc.log.Debug("Slot without description ignored", zap.String("slot", key))
			continue
		}
		if err := cc.description(slot, suffix+slotSuffix(key)); err != nil {
			return fmt.Errorf("slot %q: %w", key, err)
		}
	}
	return nil
}

// entry is a state map entry effective in one zone.
type entry struct {
	cond  *selector.Expr
	value any
}

func (cc *compilation) expr(key string) (*selector.Expr, error) {
	if e, ok := cc.exprs[key]; ok {
		return e, nil
	}
	e, err := selector.Parse(key, cc.aliases)
	if err != nil {
		return nil, err
	}
	cc.exprs[key] = e
	return e, nil
}

// entries normalizes value of one key in every zone.
func (cc *compilation) entries(key string, value any, space *selector.Space) ([][]entry, error) {
	res := make([][]entry, len(cc.zones))
	for z, v := range spread(value, len(cc.zones)) {
		sm, ok := v.(*StateMap)
		if !ok {
			if v != nil {
				res[z] = []entry{{cond: &selector.Expr{Op: selector.OpTrue}, value: v}}
			}
			continue
		}
		var (
			conds  []*selector.Expr
			values []any
		)
		for _, state := range sm.Keys() {
			e, err := cc.expr(state)
			if err != nil {
				return nil, fmt.Errorf("property %q, state %q: %w", key, state, err)
			}
			sv, _ := sm.Get(state)
			conds = append(conds, e)
			values = append(values, spread(sv, len(cc.zones))[z])
		}
		suppressed := selector.Suppressed(conds)
		for i, e := range conds {
			if suppressed[i] {
				continue
			}
			if err := space.Add(e); err != nil {
				return nil, fmt.Errorf("property %q: %w", key, err)
			}
			res[z] = append(res[z], entry{cond: e, value: values[i]})
		}
	}
	return res, nil
}

// group is a set of assignments producing identical declarations in every
// zone.
type group struct {
	signature string
	masks     []uint64
	decls     [][]css.Declaration
}

func signature(perZone [][]css.Declaration) string {
	var sb strings.Builder
	for _, decls := range perZone {
		for _, d := range decls {
			sb.WriteString(d.Property)
			sb.WriteByte(0)
			sb.WriteString(d.Value)
			sb.WriteByte(0)
		}
		sb.WriteByte(1)
	}
	return sb.String()
}

func properties(decls []css.Declaration) []string {
	res := make([]string, 0, len(decls))
	for _, d := range decls {
		res = append(res, d.Property)
	}
	return res
}

func containsAll(set, sub []string) bool {
	for _, p := range sub {
		if !slices.Contains(set, p) {
			return false
		}
	}
	return true
}

func (cc *compilation) handler(desc *Description, h Handler, suffix string) error {
	var (
		keys  []string
		space = selector.NewSpace()
		byKey = make(map[string][][]entry)
	)
	for _, key := range h.LookupKeys() {
		value, ok := desc.Get(key)
		if !ok {
			continue
		}
		es, err := cc.entries(key, value, space)
		if err != nil {
			return err
		}
		keys = append(keys, key)
		byKey[key] = es
	}
	if len(keys) == 0 {
		return nil
	}
	if !space.Exhaustive() {
		cc.log.Debug("State space too large, using ordered rules",
			zap.Strings("keys", keys), zap.Int("atoms", space.Len()))
		return cc.ordered(h, keys, byKey, suffix)
	}

	var (
		groups []*group
		index  = make(map[string]int)
	)
	for _, mask := range space.Assignments() {
		perZone := make([][]css.Declaration, len(cc.zones))
		for z := range cc.zones {
			props := make(map[string]any, len(keys))
			for _, key := range keys {
				es := byKey[key][z]
				for i := len(es) - 1; i >= 0; i-- {
					if space.Eval(es[i].cond, mask) {
						if es[i].value != nil {
							props[key] = es[i].value
						}
						break
					}
				}
			}
			if len(props) == 0 {
				continue
			}
			v := &Values{props: props, parser: cc.parser}
			perZone[z] = h.Evaluate(v)
			if err := v.Err(); err != nil {
				return err
			}
		}
		sig := signature(perZone)
		if i, ok := index[sig]; ok {
			groups[i].masks = append(groups[i].masks, mask)
			continue
		}
		index[sig] = len(groups)
		groups = append(groups, &group{signature: sig, masks: []uint64{mask}, decls: perZone})
	}

	for gi, g := range groups {
		var sel string
		if gi == 0 && cc.coversDefault(groups) {
			sel = css.Placeholder + suffix
		} else {
			terms := space.Minimize(g.masks)
			parts := make([]string, 0, len(terms))
			for _, t := range terms {
				parts = append(parts, css.Placeholder+space.Render(t, cc.prefix)+suffix)
			}
			sel = strings.Join(parts, ", ")
		}
		cc.emit(sel, g.decls)
	}
	return nil
}

// maxCombinations limits rules of one handler compiled in ordered mode.
const maxCombinations = 4096

// ErrTooManyStates is returned when ordered rules of one handler would need
// more than maxCombinations entry combinations.
var ErrTooManyStates = errors.New("too many state combinations")

// ordered compiles handler which state space is too large to enumerate.
// Every combination of entries, one per key, becomes a rule matching when
// all its conditions hold. Rules follow lexicographic order of entry indices
// and conditions sit in :where(), so among matching rules the one built from
// the last matching entry of every key comes last and wins. Null entries do
// not retract declarations of earlier rules.
func (cc *compilation) ordered(h Handler, keys []string, byKey map[string][][]entry, suffix string) error {
	always := &selector.Expr{Op: selector.OpTrue}
	for z, zone := range cc.zones {
		lists := make([][]entry, len(keys))
		total := 1
		for k, key := range keys {
			// leading empty entry matches when no other entry of key does,
			// entries before an unconditional one never win
			list := append([]entry{{cond: always}}, byKey[key][z]...)
			for i := len(list) - 1; i > 0; i-- {
				if list[i].cond.Op == selector.OpTrue {
					list = list[i:]
					break
				}
			}
			lists[k] = list
			if total *= len(lists[k]); total > maxCombinations {
				return fmt.Errorf("%w: %s", ErrTooManyStates, strings.Join(keys, ", "))
			}
		}

		var (
			sels  []string
			decls []css.Declaration
		)
		flush := func() {
			if len(sels) > 0 && len(decls) > 0 {
				cc.rules.append(z, strings.Join(sels, ", "), zone.Own, decls)
			}
			sels, decls = nil, nil
		}
		idx := make([]int, len(keys))
		for range total {
			props := make(map[string]any, len(keys))
			var cond strings.Builder
			for k, i := range idx {
				e := lists[k][i]
				if e.value != nil {
					props[keys[k]] = e.value
				}
				cond.WriteString(e.cond.CSS(cc.prefix))
			}
			var cur []css.Declaration
			if len(props) > 0 {
				v := &Values{props: props, parser: cc.parser}
				cur = h.Evaluate(v)
				if err := v.Err(); err != nil {
					return err
				}
			}
			if !slices.Equal(cur, decls) {
				flush()
				decls = cur
			}
			sel := css.Placeholder + suffix
			if cond.Len() > 0 {
				sel = css.Placeholder + ":where(" + cond.String() + ")" + suffix
			}
			sels = append(sels, sel)

			for k := len(idx) - 1; k >= 0; k-- {
				if idx[k]++; idx[k] < len(lists[k]) {
					break
				}
				idx[k] = 0
			}
		}
		flush()
	}
	return nil
}

// coversDefault reports whether the default group, the one holding the
// assignment with every atom false, can be rendered without conditions:
// every other group sets at least the same properties in every zone and
// has higher specificity.
func (cc *compilation) coversDefault(groups []*group) bool {
	for z := range cc.zones {
		base := properties(groups[0].decls[z])
		for _, g := range groups[1:] {
			if !containsAll(properties(g.decls[z]), base) {
				return false
			}
		}
	}
	return true
}

// emit adds rules of one selector. Zones above 0 are emitted only when they
// differ from zone 0. When a narrower zone drops properties set by zone 0
// every zone is limited to its own range.
func (cc *compilation) emit(sel string, perZone [][]css.Declaration) {
	own := false
	base := properties(perZone[0])
	for z := 1; z < len(cc.zones); z++ {
		if !containsAll(properties(perZone[z]), base) {
			own = true
			break
		}
	}
	for z, zone := range cc.zones {
		decls := perZone[z]
		if len(decls) == 0 {
			continue
		}
		switch {
		case own:
			cc.rules.add(z, sel, zone.Own, decls)
		case z == 0:
			cc.rules.add(z, sel, nil, decls)
		case !slices.Equal(decls, perZone[0]):
			cc.rules.add(z, sel, zone.Conditions, decls)
		}
	}
}

// ruleBuilder accumulates declarations of rules sharing zone, conditions and
// selector.
type ruleBuilder struct {
	rules []css.Rule
	zones []int
	index map[string]int
}

func (rb *ruleBuilder) add(zone int, sel string, conds []string, decls []css.Declaration) {
	key := fmt.Sprintf("%d\x00%s\x00%s", zone, strings.Join(conds, " and "), sel)
	if i, ok := rb.index[key]; ok {
		rb.rules[i].Declarations = append(rb.rules[i].Declarations, decls...)
		return
	}
	rb.index[key] = len(rb.rules)
	rb.rules = append(rb.rules, css.Rule{
		Selector:     sel,
		Declarations: slices.Clone(decls),
		AtRules:      slices.Clone(conds),
	})
	rb.zones = append(rb.zones, zone)
}

// append adds rule which keeps its position, later rules with the same
// selector do not join it.
func (rb *ruleBuilder) append(zone int, sel string, conds []string, decls []css.Declaration) {
	rb.rules = append(rb.rules, css.Rule{
		Selector:     sel,
		Declarations: slices.Clone(decls),
		AtRules:      slices.Clone(conds),
	})
	rb.zones = append(rb.zones, zone)
}

func (rb *ruleBuilder) result() []css.Rule {
	order := make([]int, len(rb.rules))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return rb.zones[a] - rb.zones[b]
	})
	res := make([]css.Rule, 0, len(order))
	for _, i := range order {
		res = append(res, rb.rules[i])
	}
	return res
}
