package glaze

import (
	"errors"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// DefaultThemeName is used for the root theme of a file without name.
const DefaultThemeName = "main"

// File is YAML form of a palette. Root theme is exported without prefix,
// every entry of Themes extends it.
type File struct {
	Name       string                                    `yaml:"name,omitempty"`
	Hue        float64                                   `yaml:"hue"`
	Saturation *float64                                  `yaml:"saturation,omitempty"`
	Colors     *Table                                    `yaml:"colors"`
	Themes     *orderedmap.OrderedMap[string, FileTheme] `yaml:"themes,omitempty"`
}

// FileTheme describes theme derived from the root one.
type FileTheme struct {
	Hue        *float64 `yaml:"hue,omitempty"`
	Saturation *float64 `yaml:"saturation,omitempty"`
	Colors     *Table   `yaml:"colors,omitempty"`
}

func (ft *FileTheme) UnmarshalYAML(node *yaml.Node) error {
	type plain FileTheme
	return decodeKnownFields(node, "FileTheme", (*plain)(ft))
}

// ReadFile decodes palette file.
func ReadFile(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("theme file is empty")
		}
		return nil, fmt.Errorf("unable to decode theme file: %w", err)
	}
	return &f, nil
}

// Palette builds palette described by file.
func (f *File) Palette(opts ...Option) *Palette {
	name := f.Name
	if name == "" {
		name = DefaultThemeName
	}
	sat := 100.0
	if f.Saturation != nil {
		sat = *f.Saturation
	}
	root := NewTheme(f.Hue, sat, opts...).Colors(f.Colors)

	p := NewPalette(WithPrimary(name)).Add(name, root)
	if f.Themes == nil {
		return p
	}
	for pair := f.Themes.Oldest(); pair != nil; pair = pair.Next() {
		p.Add(pair.Key, root.Extend(ExtendOptions{
			Hue:        pair.Value.Hue,
			Saturation: pair.Value.Saturation,
			Colors:     pair.Value.Colors,
		}))
	}
	return p
}

// WriteFile encodes palette file.
func WriteFile(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("unable to encode theme file: %w", err)
	}
	return enc.Close()
}
