package compile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A Preset is a named look: a color grade plus a default transition that an
// edit can opt into by name instead of spelling out every parameter. Presets
// merge under any explicit effect parameters, and their values still pass
// through Normalize like everything else.
type Preset struct {
	Color      *ColorAdjustment `yaml:"color"`
	Transition *Transition      `yaml:"transition"`
}

// builtinPresets ship with the binary and can be overridden by a preset file.
var builtinPresets = map[string]Preset{
	"warm": {
		Color:      &ColorAdjustment{Brightness: 0.05, Saturation: 1.1, Gamma: 1.05},
		Transition: &Transition{Type: "fade", DurationSeconds: 1.0},
	},
	"cold": {
		Color:      &ColorAdjustment{Brightness: -0.05, Saturation: 0.95, Contrast: 1.1},
		Transition: &Transition{Type: "fade", DurationSeconds: 1.0},
	},
	"punchy": {
		Color:      &ColorAdjustment{Contrast: 1.2, Saturation: 1.2, Vibrance: 1.15},
		Transition: &Transition{Type: "fade", DurationSeconds: 0.5},
	},
}

// LoadPresets returns the builtin presets merged with an optional YAML file.
// File entries win over builtins of the same name. A missing path is not an
// error; a malformed file is.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := make(map[string]Preset, len(builtinPresets))
	for name, p := range builtinPresets {
		presets[name] = p
	}

	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return presets, nil
		}
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var fromFile map[string]Preset
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse presets file: %w", err)
	}
	for name, p := range fromFile {
		presets[name] = p
	}
	return presets, nil
}

// ApplyPreset fills effect fields the request left empty. Explicit request
// values always win over the preset.
func ApplyPreset(fx *EffectSet, p Preset) {
	if fx.Color == nil && p.Color != nil {
		c := *p.Color
		fx.Color = &c
	}
	if fx.Transition == nil && p.Transition != nil {
		t := *p.Transition
		fx.Transition = &t
	}
}
