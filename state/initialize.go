package state

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"stylec/cache"
	"stylec/common"
	"stylec/shorthand"
	"stylec/styles"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// Setup builds compilation pipeline from loaded configuration. Must be called
// after Cfg and Log are set, Close releases what it opened.
func (e *LocalEnv) Setup() error {
	if e.Cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	c := &e.Cfg.Compiler

	e.Parser = shorthand.NewParser(log, shorthand.WithRegistry(c.Registry()), shorthand.WithStrict(c.Strict))
	e.Merger = styles.NewMerger(log, c.Production)
	e.Styles = styles.NewCompiler(log,
		styles.WithParser(e.Parser),
		styles.WithMerger(e.Merger),
		styles.WithAliases(c.SelectorAliases()),
		styles.WithAttributePrefix(c.AttributePrefix),
	)
	e.Theme = e.Cfg.Glaze.Glaze()

	switch c.Cache.Kind {
	case common.CacheKindMemory:
		e.store = cache.NewMemory(c.Cache.Limit)
	case common.CacheKindSqlite:
		s, err := cache.OpenSQLite(c.Cache.Path)
		if err != nil {
			return fmt.Errorf("unable to open cache: %w", err)
		}
		e.store = s
	default:
		e.Compiler = e.Styles
		return nil
	}
	e.Cache = cache.NewCompiler(e.store, e.Styles, c.Salt(), log)
	e.Compiler = e.Cache
	return nil
}

// Close releases cache store if one was opened.
func (e *LocalEnv) Close() error {
	if e.store == nil {
		return nil
	}
	if e.Cache != nil {
		st := e.Cache.Stats()
		if e.Log != nil {
			e.Log.Debug("Cache usage", zap.Int64("hits", st.Hits), zap.Int64("misses", st.Misses))
		}
	}
	err := e.store.Close()
	e.store = nil
	return err
}
