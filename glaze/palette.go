package glaze

import (
	"fmt"

	"github.com/gosimple/slug"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"stylec/css"
	"stylec/styles"
)

// Palette groups named themes exported together.
type Palette struct {
	themes  *orderedmap.OrderedMap[string, *Theme]
	primary string
	prefix  bool
}

// PaletteOption configures palette.
type PaletteOption func(*Palette)

// WithPrimary names theme which colors are exported without prefix.
func WithPrimary(name string) PaletteOption {
	return func(p *Palette) {
		p.primary = name
	}
}

// WithPrefix turns name prefixing on or off, it is on by default.
func WithPrefix(on bool) PaletteOption {
	return func(p *Palette) {
		p.prefix = on
	}
}

// NewPalette creates empty palette.
func NewPalette(opts ...PaletteOption) *Palette {
	p := &Palette{themes: orderedmap.New[string, *Theme](), prefix: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add adds or replaces theme.
func (p *Palette) Add(name string, t *Theme) *Palette {
	p.themes.Set(name, t)
	return p
}

// Theme returns theme by name.
func (p *Palette) Theme(name string) (*Theme, bool) {
	return p.themes.Get(name)
}

// Names returns theme names in order they were added.
func (p *Palette) Names() []string {
	names := make([]string, 0, p.themes.Len())
	for pair := p.themes.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Prefix returns prefix added to color names of theme.
func (p *Palette) Prefix(theme string) string {
	if !p.prefix || theme == p.primary {
		return ""
	}
	return slug.Make(theme) + "-"
}

// list resolves all themes and returns their colors with prefixed names.
// Colors of later themes replace earlier ones with the same name.
func (p *Palette) list() ([]*ResolvedColor, error) {
	all := orderedmap.New[string, *ResolvedColor]()
	for pair := p.themes.Oldest(); pair != nil; pair = pair.Next() {
		colors, err := pair.Value.list()
		if err != nil {
			return nil, fmt.Errorf("theme %q: %w", pair.Key, err)
		}
		prefix := p.Prefix(pair.Key)
		for _, rc := range colors {
			named := *rc
			named.Name = prefix + rc.Name
			all.Set(named.Name, &named)
		}
	}
	res := make([]*ResolvedColor, 0, all.Len())
	for pair := all.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, pair.Value)
	}
	return res, nil
}

func (p *Palette) options(opts *ExportOptions) ExportOptions {
	if opts != nil {
		return *opts
	}
	if first := p.themes.Oldest(); first != nil {
		return first.Value.ExportOptions()
	}
	cfg := defaults
	return ExportOptions{Modes: cfg.Modes, States: cfg.States, Format: cfg.Format}
}

// Tokens exports all themes as "#name" entries.
func (p *Palette) Tokens(opts *ExportOptions) (*Tokens, error) {
	colors, err := p.list()
	if err != nil {
		return nil, err
	}
	return tokens(colors, p.options(opts)), nil
}

// JSON exports all themes as name to variant mapping.
func (p *Palette) JSON(opts *ExportOptions) (*Tokens, error) {
	colors, err := p.list()
	if err != nil {
		return nil, err
	}
	return exportJSON(colors, p.options(opts)), nil
}

// Description exports all themes as one style description.
func (p *Palette) Description(opts *ExportOptions) (*styles.Description, error) {
	colors, err := p.list()
	if err != nil {
		return nil, err
	}
	return description(colors, p.options(opts)), nil
}

// CSS compiles all themes into stylesheet scoped to selector.
func (p *Palette) CSS(opts *ExportOptions, compiler *styles.Compiler, selector string) (*css.Stylesheet, error) {
	desc, err := p.Description(opts)
	if err != nil {
		return nil, err
	}
	return stylesheet(desc, compiler, selector)
}
