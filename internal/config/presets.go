package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtinPresets []byte

// Preset is a named parameter set. Empty fields leave the caller's defaults
// in place.
type Preset struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Operation   string `yaml:"operation" json:"operation"`
	Size        int    `yaml:"size,omitempty" json:"size,omitempty"`
	Kernel      string `yaml:"kernel,omitempty" json:"kernel,omitempty"`
	Threshold   *int   `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	MBVQ        bool   `yaml:"mbvq,omitempty" json:"mbvq,omitempty"`
	Grayscale   bool   `yaml:"bw,omitempty" json:"bw,omitempty"`
}

type presetFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

// ParsePresets decodes a presets document.
func ParsePresets(data []byte) (map[string]Preset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	for name, p := range f.Presets {
		if p.Operation == "" {
			return nil, fmt.Errorf("preset %q has no operation", name)
		}
	}
	if f.Presets == nil {
		f.Presets = map[string]Preset{}
	}
	return f.Presets, nil
}

// LoadPresets returns the built-in presets overlaid with those in path.
// An empty path yields only the built-ins.
func LoadPresets(path string) (map[string]Preset, error) {
	presets, err := ParsePresets(builtinPresets)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	extra, err := ParsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for name, p := range extra {
		presets[name] = p
	}
	return presets, nil
}

// PresetNames returns the preset names sorted.
func PresetNames(presets map[string]Preset) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
