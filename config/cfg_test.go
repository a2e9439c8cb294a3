package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"stylec/common"
	"stylec/glaze"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	c := cfg.Compiler
	if c.RootClass != ".t0" {
		t.Errorf("RootClass = %q, want .t0", c.RootClass)
	}
	if want := []float64{1400, 1024, 768}; !reflect.DeepEqual(c.Breakpoints, want) {
		t.Errorf("Breakpoints = %v, want %v", c.Breakpoints, want)
	}
	if c.AttributePrefix != "data-" {
		t.Errorf("AttributePrefix = %q", c.AttributePrefix)
	}
	if c.Strict || c.Production {
		t.Errorf("Strict = %t, Production = %t, want both false", c.Strict, c.Production)
	}
	if c.Cache.Kind != common.CacheKindMemory || c.Cache.Limit != 1000 {
		t.Errorf("Cache = %+v", c.Cache)
	}

	if got := cfg.Glaze.Glaze(); !reflect.DeepEqual(got, glaze.DefaultConfig()) {
		t.Errorf("Glaze() = %+v, want defaults %+v", got, glaze.DefaultConfig())
	}
	if cfg.Extract.Selector != ":root" {
		t.Errorf("theme selector = %q", cfg.Extract.Selector)
	}
	// template field is kept as is for later expansion
	if !strings.Contains(cfg.Extract.OutputNameTemplate, "{{") {
		t.Errorf("output name template was expanded: %q", cfg.Extract.OutputNameTemplate)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
compiler:
  root_class: ".card"
  breakpoints: [900]
  strict: true
  units:
    hx: "var(--header-height)"
  aliases:
    open: "[data-open]"
glaze:
  dark_lightness: [15, 95]
  format: hex
  modes:
    high_contrast: true
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Compiler.RootClass != ".card" || !cfg.Compiler.Strict {
		t.Errorf("Compiler = %+v", cfg.Compiler)
	}
	if want := []float64{900}; !reflect.DeepEqual(cfg.Compiler.Breakpoints, want) {
		t.Errorf("Breakpoints = %v, want %v", cfg.Compiler.Breakpoints, want)
	}
	// values absent in the file come from defaults
	if cfg.Compiler.AttributePrefix != "data-" {
		t.Errorf("AttributePrefix = %q, want default", cfg.Compiler.AttributePrefix)
	}

	g := cfg.Glaze.Glaze()
	if g.DarkLightness != [2]float64{15, 95} {
		t.Errorf("DarkLightness = %v", g.DarkLightness)
	}
	if g.Format != common.ColorFormatHex {
		t.Errorf("Format = %v, want hex", g.Format)
	}
	if !g.Modes.HighContrast || !g.Modes.Dark {
		t.Errorf("Modes = %+v", g.Modes)
	}

	if u, ok := cfg.Compiler.Registry().Unit("hx"); !ok || u.Expr != "var(--header-height)" {
		t.Errorf("custom unit = %+v, %t", u, ok)
	}
	if _, ok := cfg.Compiler.Registry().Unit("x"); !ok {
		t.Error("builtin unit x is missing from registry")
	}
	aliases := cfg.Compiler.SelectorAliases()
	if aliases["open"] != "[data-open]" || aliases["hover"] != ":hover" {
		t.Errorf("SelectorAliases() = %v", aliases)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\ncompiler:\n  strict: true\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"unknown nested field", "version: 1\nglaze:\n  hue: 10\n"},
		{"version", "version: 2\n"},
		{"bad format", "version: 1\nglaze:\n  format: cmyk\n"},
		{"bad cache kind", "version: 1\ncompiler:\n  cache:\n    kind: redis\n"},
		{"dark window size", "version: 1\nglaze:\n  dark_lightness: [10]\n"},
		{"dark window range", "version: 1\nglaze:\n  dark_lightness: [10, 120]\n"},
		{"dark window order", "version: 1\nglaze:\n  dark_lightness: [90, 10]\n"},
		{"desaturation", "version: 1\nglaze:\n  dark_desaturation: 2\n"},
		{"breakpoint", "version: 1\ncompiler:\n  breakpoints: [0]\n"},
		{"root class", "version: 1\ncompiler:\n  root_class: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration(writeConfig(t, `version: 1
compiler:
  units:
    hx: "var(--header-height)"
glaze:
  format: oklch
`))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "format: oklch") {
		t.Errorf("dumped enum is not in text form:\n%s", data)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if !reflect.DeepEqual(cfg2.Compiler, cfg.Compiler) {
		t.Errorf("Compiler mismatch after dump/load:\n got %+v\nwant %+v", cfg2.Compiler, cfg.Compiler)
	}
	if !reflect.DeepEqual(cfg2.Glaze, cfg.Glaze) {
		t.Errorf("Glaze mismatch after dump/load:\n got %+v\nwant %+v", cfg2.Glaze, cfg.Glaze)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		result, err := unmarshalConfig([]byte(`version: 1`), &Config{}, false)
		if err != nil {
			t.Fatalf("unmarshalConfig() error = %v", err)
		}
		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := unmarshalConfig([]byte(`invalid: [yaml`), &Config{}, false); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got bare error: %v", err)
	}
}

func TestCompilerConfig_Salt(t *testing.T) {
	a := CompilerConfig{
		AttributePrefix: "data-",
		Units:           map[string]string{"cr": "var(--r)", "gp": "var(--gap)"},
		Aliases:         map[string]string{"open": "[data-open]"},
	}
	b := a
	b.Units = map[string]string{"gp": "var(--gap)", "cr": "var(--r)"}
	if a.Salt() != b.Salt() {
		t.Errorf("salt depends on map order: %q != %q", a.Salt(), b.Salt())
	}

	b.Strict = true
	if a.Salt() == b.Salt() {
		t.Error("strict mode does not change salt")
	}

	// units and aliases with the same entries must not collide
	c := CompilerConfig{Units: map[string]string{"open": "[data-open]"}}
	d := CompilerConfig{Aliases: map[string]string{"open": "[data-open]"}}
	if c.Salt() == d.Salt() {
		t.Error("units and aliases produce the same salt")
	}
	// rendering changes here do not affect compiled output
	e := a
	e.Production = true
	e.Cache.Limit = 1
	if a.Salt() != e.Salt() {
		t.Error("salt depends on settings not affecting output")
	}
}

func TestCleanFileName(t *testing.T) {
	if got := CleanFileName(".." + string(os.PathSeparator) + "theme"); strings.ContainsRune(got, os.PathSeparator) || strings.HasPrefix(got, ".") {
		t.Errorf("CleanFileName() = %q", got)
	}
	if got := CleanFileName(string(os.PathSeparator)); got != "_bad_file_name_" {
		t.Errorf("CleanFileName() = %q", got)
	}
	if got := CleanFileName(" .card\x01 theme"); got != "card theme" {
		t.Errorf("CleanFileName() = %q", got)
	}
}

func TestEnableColorOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if EnableColorOutput(os.Stdout) {
		t.Error("color output is enabled with NO_COLOR set")
	}
}
