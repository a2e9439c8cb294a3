package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	validator "github.com/go-playground/validator/v10"
	"github.com/maruel/natural"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"stylec/common"
	"stylec/glaze"
	"stylec/selector"
	"stylec/shorthand"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	CacheConfig struct {
		Kind  common.CacheKind `yaml:"kind" validate:"gte=0"`
		Path  string           `yaml:"path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required_if=Kind 2"`
		Limit int              `yaml:"limit" validate:"gte=0"`
	}

	CompilerConfig struct {
		RootClass       string            `yaml:"root_class" validate:"required"`
		Breakpoints     []float64         `yaml:"breakpoints" validate:"dive,gt=0"`
		AttributePrefix string            `yaml:"attribute_prefix"`
		Strict          bool              `yaml:"strict"`
		Production      bool              `yaml:"production"`
		Units           map[string]string `yaml:"units" validate:"dive,keys,required,alpha,endkeys,required"`
		Aliases         map[string]string `yaml:"aliases" validate:"dive,keys,required,endkeys,required"`
		Cache           CacheConfig       `yaml:"cache"`
	}

	GlazeConfig struct {
		DarkLightness    []float64          `yaml:"dark_lightness" validate:"len=2,dive,gte=0,lte=100"`
		DarkDesaturation float64            `yaml:"dark_desaturation" validate:"gte=0,lte=1"`
		States           glaze.StateAliases `yaml:"states"`
		Modes            glaze.Modes        `yaml:"modes"`
		Format           common.ColorFormat `yaml:"format" validate:"gte=0"`
	}

	ExtractConfig struct {
		OutputNameTemplate string `yaml:"output_name_template"`
		Selector           string `yaml:"theme_selector" validate:"required"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Compiler  CompilerConfig `yaml:"compiler"`
		Glaze     GlazeConfig    `yaml:"glaze"`
		Extract   ExtractConfig  `yaml:"extract"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, output names are expanded
	// later for every produced file
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// checkConfig performs validations which cannot be expressed with tags.
func checkConfig(sl validator.StructLevel) {
	var cfg *Config
	switch v := sl.Current().Interface().(type) {
	case Config:
		cfg = &v
	case *Config:
		cfg = v
	default:
		return
	}
	if w := cfg.Glaze.DarkLightness; len(w) == 2 && w[0] >= w[1] {
		sl.ReportError(cfg.Glaze.DarkLightness, "Glaze.DarkLightness", "dark_lightness", "ordered", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkConfig)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// Registry returns renderer registry with configured custom units added to
// builtin ones.
func (c *CompilerConfig) Registry() *shorthand.Registry {
	reg := shorthand.DefaultRegistry().Clone()
	for name, expr := range c.Units {
		reg.SetUnit(name, shorthand.Unit{Expr: expr})
	}
	return reg
}

// SelectorAliases returns default aliases extended with configured ones.
func (c *CompilerConfig) SelectorAliases() selector.Aliases {
	return selector.DefaultAliases().Merge(c.Aliases)
}

// Salt describes every setting which changes compiled output, it is mixed
// into cache keys.
func (c *CompilerConfig) Salt() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "prefix=%s;strict=%t;", c.AttributePrefix, c.Strict)
	for _, m := range []map[string]string{c.Units, c.Aliases} {
		keys := sortedKeys(m)
		for _, k := range keys {
			fmt.Fprintf(&buf, "%s=%s;", k, m[k])
		}
		buf.WriteByte('|')
	}
	return buf.String()
}

// Glaze converts section into theme settings.
func (c *GlazeConfig) Glaze() glaze.Config {
	cfg := glaze.DefaultConfig()
	if len(c.DarkLightness) == 2 {
		cfg.DarkLightness = [2]float64{c.DarkLightness[0], c.DarkLightness[1]}
	}
	cfg.DarkDesaturation = c.DarkDesaturation
	cfg.States = c.States
	cfg.Modes = c.Modes
	cfg.Format = c.Format
	return cfg
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}
