package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"stylec/cache"
	"stylec/common"
	"stylec/config"
	"stylec/styles"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	if ctx == nil {
		t.Fatal("ContextWithEnv() returned nil")
	}

	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
}

func TestEnvFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		if env := EnvFromContext(ContextWithEnv(context.Background())); env == nil {
			t.Error("Expected non-nil environment")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	time.Sleep(10 * time.Millisecond)
	uptime := env.Uptime()

	if uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
	if uptime > 1*time.Second {
		t.Errorf("Uptime() = %v, unexpectedly large", uptime)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}
		for i := 0; i < 3; i++ {
			env.RedirectStdLog()
			if env.restoreStdLog == nil {
				t.Errorf("Iteration %d: restoreStdLog not set", i)
			}
			env.RestoreStdLog()
		}
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{}
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to remain nil")
		}
		env.RestoreStdLog()
	})
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return cfg
}

func TestLocalEnv_SetupRequiresConfig(t *testing.T) {
	env := newLocalEnv()
	if err := env.Setup(); err == nil {
		t.Error("expected error without configuration")
	}
	if err := env.Close(); err != nil {
		t.Errorf("Close() without setup error = %v", err)
	}
}

func TestLocalEnv_SetupMemoryCache(t *testing.T) {
	env := newLocalEnv()
	env.Cfg = loadConfig(t)
	env.Log = zap.NewNop()
	env.Cfg.Compiler.Units = map[string]string{"hx": "var(--header-height)"}
	env.Cfg.Compiler.AttributePrefix = "aria-"

	if err := env.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer env.Close()

	if env.Cache == nil || env.Compiler != Compiler(env.Cache) {
		t.Fatal("memory cache is not wired into compiler")
	}

	desc := styles.New().
		Set("radius", "1hx").
		Set("fill", styles.States("", "#surface", "pressed", "#accent"))
	for range 2 {
		rules, err := env.Compiler.Compile(desc, env.Cfg.Compiler.Breakpoints)
		if err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		if len(rules) != 2 {
			t.Fatalf("rules = %v", rules)
		}
		if v, ok := rules[0].Get("border-radius"); !ok || v != "var(--header-height)" {
			t.Errorf("border-radius = %q, %t", v, ok)
		}
		if rules[1].Selector != "&[aria-pressed]" {
			t.Errorf("state selector = %q", rules[1].Selector)
		}
	}
	if st := env.Cache.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Errorf("cache stats = %+v", st)
	}
}

func TestLocalEnv_SetupNoCache(t *testing.T) {
	env := newLocalEnv()
	env.Cfg = loadConfig(t)
	env.Cfg.Compiler.Cache.Kind = common.CacheKindNone

	if err := env.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if env.Cache != nil {
		t.Error("cache must not be created")
	}
	if _, ok := env.Compiler.(*styles.Compiler); !ok {
		t.Errorf("Compiler = %T, want *styles.Compiler", env.Compiler)
	}
	if env.Theme != env.Cfg.Glaze.Glaze() {
		t.Errorf("Theme = %+v", env.Theme)
	}
	if err := env.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestLocalEnv_SetupSQLiteCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	desc := styles.New().Set("color", "#text")

	for i := range 2 {
		env := newLocalEnv()
		env.Cfg = loadConfig(t)
		env.Cfg.Compiler.Cache.Kind = common.CacheKindSqlite
		env.Cfg.Compiler.Cache.Path = path

		if err := env.Setup(); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
		if _, err := env.Compiler.Compile(desc, nil); err != nil {
			t.Fatalf("Compile() error = %v", err)
		}
		want := cache.Stats{Misses: 1}
		if i > 0 {
			// persisted by previous run
			want = cache.Stats{Hits: 1}
		}
		if st := env.Cache.Stats(); st != want {
			t.Errorf("run %d: stats = %+v, want %+v", i, st, want)
		}
		if err := env.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
}
