package styles

import (
	"go.uber.org/zap"
)

// Merger composes layered descriptions.
type Merger struct {
	log        *zap.Logger
	production bool
}

// NewMerger creates merger. In production mode diagnostics are not logged.
func NewMerger(log *zap.Logger, production bool) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{log: log.Named("merge"), production: production}
}

var defaultMerger = NewMerger(nil, false)

// Merge folds layers over base using a silent merger.
func Merge(base *Description, layers ...*Description) *Description {
	return defaultMerger.Merge(base, layers...)
}

// Merge folds base and layers left to right starting from empty
// description. The result never contains tombstones, extend directives or
// inheritance markers, and inputs are not modified.
func (m *Merger) Merge(base *Description, layers ...*Description) *Description {
	res := New()
	for _, layer := range append([]*Description{base}, layers...) {
		if layer != nil {
			res = m.merge(res, layer, "")
		}
	}
	return res
}

func (m *Merger) merge(dst, src *Description, path string) *Description {
	res := dst.Clone()
	src.Each(func(key string, value any) {
		if IsSlotKey(key) {
			m.mergeSlot(res, key, value, path)
			return
		}
		m.mergeProperty(res, key, value, path)
	})
	return res
}

func (m *Merger) mergeSlot(res *Description, key string, value any, path string) {
	switch v := value.(type) {
	case nil:
		res.Delete(key)
	case bool:
		if !v {
			res.Delete(key)
		}
	case *Description:
		inherited, _ := res.Get(key)
		base, ok := inherited.(*Description)
		if !ok {
			base = New()
		}
		res.Set(key, m.merge(base, v, path+key+"/"))
	default:
		m.mergeProperty(res, key, value, path)
	}
}

func (m *Merger) mergeProperty(res *Description, key string, value any, path string) {
	inherited, present := res.Get(key)
	var merged any
	switch v := value.(type) {
	case nil:
		res.Delete(key)
		return
	case string:
		if v == Inherit {
			// property keeps whatever it inherited
			return
		}
		merged = v
	case *StateMap:
		var sm *StateMap
		if v.Extend {
			sm = m.extend(key, inherited, present, v, path)
		} else {
			sm = m.replace(key, inherited, present, v, path)
		}
		if sm.Len() == 0 {
			res.Delete(key)
			return
		}
		merged = sm
	default:
		merged = cloneValue(v)
	}
	res.Set(key, merged)
}

// asStateMap normalizes inherited value: a literal becomes the default
// state, absent or false means there is nothing to inherit.
func asStateMap(inherited any, present bool) *StateMap {
	if !present {
		return nil
	}
	switch v := inherited.(type) {
	case *StateMap:
		return v
	case bool:
		if !v {
			return nil
		}
	case nil:
		return nil
	}
	return States("", cloneValue(inherited))
}

// extend resolves extend directive: in-place overrides keep their position,
// new and repositioned states are appended in directive order.
func (m *Merger) extend(key string, inherited any, present bool, directive *StateMap, path string) *StateMap {
	base := asStateMap(inherited, present)
	res := NewStateMap()
	if base != nil {
		base.Each(func(state string, value any) {
			dv, overridden := directive.Get(state)
			switch {
			case !overridden:
				res.Set(state, cloneValue(value))
			case dv == nil, dv == Inherit:
				// removed or moved to the end
			default:
				res.Set(state, cloneValue(dv))
			}
		})
	}
	directive.Each(func(state string, dv any) {
		var (
			bv     any
			exists bool
		)
		if base != nil {
			bv, exists = base.Get(state)
		}
		switch {
		case dv == nil:
		case dv == Inherit:
			if !exists {
				m.dangling(key, state, path)
				return
			}
			res.Set(state, cloneValue(bv))
		case !exists:
			res.Set(state, cloneValue(dv))
		}
	})
	return res
}

// replace resolves plain state map: it replaces inherited value except for
// states marked to inherit.
func (m *Merger) replace(key string, inherited any, present bool, sm *StateMap, path string) *StateMap {
	base := asStateMap(inherited, present)
	res := NewStateMap()
	sm.Each(func(state string, value any) {
		switch {
		case value == nil:
		case value == Inherit:
			var (
				bv     any
				exists bool
			)
			if base != nil {
				bv, exists = base.Get(state)
			}
			if !exists {
				m.dangling(key, state, path)
				return
			}
			res.Set(state, cloneValue(bv))
		default:
			res.Set(state, cloneValue(value))
		}
	})
	return res
}

func (m *Merger) dangling(key, state, path string) {
	if m.production {
		return
	}
	m.log.Warn("Dangling @inherit dropped, nothing to inherit",
		zap.String("property", path+key), zap.String("state", state))
}
