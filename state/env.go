// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"stylec/cache"
	"stylec/config"
	"stylec/css"
	"stylec/glaze"
	"stylec/shorthand"
	"stylec/styles"
)

type envKey struct{}

// Compiler is implemented by both plain and caching style compilers.
type Compiler interface {
	Compile(desc *styles.Description, breakpoints []float64) ([]css.Rule, error)
}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// built by Setup from configuration
	Parser   *shorthand.Parser
	Merger   *styles.Merger
	Styles   *styles.Compiler
	Compiler Compiler
	Cache    *cache.Compiler
	Theme    glaze.Config

	// used by output producing subcommands
	Overwrite bool
	CodePage  encoding.Encoding

	store         cache.Store
	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends output of standard library logger to program log
// until RestoreStdLog is called.
func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log.Named("stdlog"))
}

// RestoreStdLog flushes program log and undoes RedirectStdLog, it could be
// called more than once.
func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
}
