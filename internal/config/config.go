// Package config loads the compiler's YAML configuration file, which
// carries knobs that spec.md fixes as defaults but that a real
// toolchain exposes for tuning (monomorphization depth, niche
// optimization, module-wide diagnostic suppression).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the parsed `cursive0.yaml`.
type Config struct {
	// MonomorphizationDepth bounds the instantiation-demand queue
	// (spec.md §4.3.2 fixes 128 as the reference default).
	MonomorphizationDepth int `yaml:"monomorphization_depth"`

	// NicheOptimization toggles single-payload-state niche layout
	// (spec.md §9: "multi-niche cases are left to future work" — this
	// flag lets a build disable niche layout entirely for debugging).
	NicheOptimization bool `yaml:"niche_optimization"`

	// Allow lists diagnostic codes suppressed module-wide, in addition
	// to any per-item `[[allow(code)]]` attribute (spec.md §7).
	Allow []string `yaml:"allow"`

	// WidenWarnThresholdBytes is the payload-size threshold at or above which
	// `widen e` emits a warning (spec.md §4.3 fixes 256).
	WidenWarnThresholdBytes int `yaml:"widen_warn_threshold_bytes"`
}

// Default returns the reference configuration (spec.md's fixed defaults).
func Default() Config {
	return Config{
		MonomorphizationDepth:   128,
		NicheOptimization:       true,
		WidenWarnThresholdBytes: 256,
	}
}

// Load reads and parses a cursive0.yaml at path, falling back to
// Default() for any field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MonomorphizationDepth == 0 {
		cfg.MonomorphizationDepth = 128
	}
	if cfg.WidenWarnThresholdBytes == 0 {
		cfg.WidenWarnThresholdBytes = 256
	}
	return cfg, nil
}
