package config

import "sort"

// Presets holds ready configurations per simulation variant.
var Presets = map[string]map[string]*Config{
	"calcium": {
		"overview": preset("calcium", nil),
		"dense":    preset("calcium", func(c *Config) { c.Timesteps.Count = 11 }),
		"final":    preset("calcium", func(c *Config) { c.Timesteps.Steps = []int64{DefaultStop} }),
		"colored": preset("calcium", func(c *Config) {
			c.Colors.Pattern = "{data}/calcium/rank_{rank}_step_{step}_calcium.txt"
		}),
	},
	"disable": {
		"overview": preset("disable", nil),
		"dense":    preset("disable", func(c *Config) { c.Timesteps.Count = 11 }),
	},
	"stimulus": {
		"overview": preset("stimulus", nil),
		"dense":    preset("stimulus", func(c *Config) { c.Timesteps.Count = 11 }),
		"areas": preset("stimulus", func(c *Config) {
			c.Render.Hulls = true
			c.Colors.Pattern = "{data}/stimulus/step_{step}_areas.txt"
			c.Colors.Layout.ByArea = true
		}),
	},
	"nonetwork": {
		"overview": preset("nonetwork", func(c *Config) { c.Network.Pattern = "" }),
	},
}

func preset(variant string, fn func(*Config)) *Config {
	c := DefaultConfig()
	c.Variant = variant
	if fn != nil {
		fn(c)
	}
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(variant, name string) *Config {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	cfg, ok := variantPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(variant string) []string {
	variantPresets, ok := Presets[variant]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variantPresets))
	for name := range variantPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
