package cache

import (
	"slices"

	"github.com/puzpuzpuz/xsync/v4"

	"stylec/css"
)

// Memory is in-process store safe for concurrent use.
type Memory struct {
	rules *xsync.Map[Key, []css.Rule]
	limit int
}

// NewMemory creates memory store. When limit is positive the store is
// cleared once it holds more entries.
func NewMemory(limit int) *Memory {
	return &Memory{rules: xsync.NewMap[Key, []css.Rule](), limit: limit}
}

func (m *Memory) Get(key Key) ([]css.Rule, bool, error) {
	rules, ok := m.rules.Load(key)
	if !ok {
		return nil, false, nil
	}
	return cloneRules(rules), true, nil
}

func (m *Memory) Put(key Key, rules []css.Rule) error {
	if m.limit > 0 && m.rules.Size() >= m.limit {
		m.rules.Clear()
	}
	m.rules.Store(key, cloneRules(rules))
	return nil
}

// Len returns number of stored entries.
func (m *Memory) Len() int {
	return m.rules.Size()
}

func (m *Memory) Close() error {
	m.rules.Clear()
	return nil
}

func cloneRules(rules []css.Rule) []css.Rule {
	res := make([]css.Rule, len(rules))
	for i, r := range rules {
		r.Declarations = slices.Clone(r.Declarations)
		r.AtRules = slices.Clone(r.AtRules)
		res[i] = r
	}
	return res
}
