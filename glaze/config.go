package glaze

import (
	"fmt"

	"stylec/common"
)

// Modes selects which variants are exported in addition to light one.
type Modes struct {
	Dark         bool `yaml:"dark"`
	HighContrast bool `yaml:"high_contrast"`
}

// StateAliases names the state conditions each exported variant is bound to.
type StateAliases struct {
	Light            string `yaml:"light"`
	Dark             string `yaml:"dark"`
	HighContrast     string `yaml:"high_contrast"`
	DarkHighContrast string `yaml:"dark_high_contrast"`
}

// Config holds settings shared by all themes.
type Config struct {
	// Lightness window dark variants are mapped into.
	DarkLightness [2]float64 `yaml:"dark_lightness"`
	// Fraction saturation is reduced by for auto dark variants.
	DarkDesaturation float64            `yaml:"dark_desaturation"`
	States           StateAliases       `yaml:"states"`
	Modes            Modes              `yaml:"modes"`
	Format           common.ColorFormat `yaml:"format"`
}

// DefaultConfig returns built in settings.
func DefaultConfig() Config {
	return Config{
		DarkLightness:    [2]float64{10, 90},
		DarkDesaturation: 0.1,
		States: StateAliases{
			Light:            "",
			Dark:             "@dark",
			HighContrast:     "@high-contrast",
			DarkHighContrast: "@dark & @high-contrast",
		},
		Modes:  Modes{Dark: true},
		Format: common.ColorFormatOkhsl,
	}
}

// Validate checks settings consistency.
func (c Config) Validate() error {
	lo, hi := c.DarkLightness[0], c.DarkLightness[1]
	if lo < 0 || hi > 100 || lo >= hi {
		return fmt.Errorf("dark lightness window [%g, %g] must be ordered and within 0..100", lo, hi)
	}
	if c.DarkDesaturation < 0 || c.DarkDesaturation > 1 {
		return fmt.Errorf("dark desaturation %g must be within 0..1", c.DarkDesaturation)
	}
	return nil
}

var defaults = DefaultConfig()

// SetDefaults replaces process wide settings used by themes created without
// WithConfig. Not synchronized, call before creating themes.
func SetDefaults(c Config) {
	defaults = c
}

// Defaults returns process wide settings.
func Defaults() Config {
	return defaults
}
