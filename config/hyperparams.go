package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// HyperParamOverrides is an optional YAML sidecar for the handful of
// training knobs a researcher tends to sweep (discount, tolerances,
// worker count) without hand-editing the line-based config file. It is
// applied after the directive file, so its values replace the file's.
// CLI flags still win: they freeze their fields before the file and the
// overlay are applied, and both skip frozen fields.
type HyperParamOverrides struct {
	Discount                   *float64 `yaml:"discount"`
	MaxIter                    *int     `yaml:"maxIter"`
	ValueTolerance             *float64 `yaml:"valueTolerance"`
	ActionsTolerance           *int     `yaml:"actionsTolerance"`
	ActionsPercentageTolerance *float64 `yaml:"actionsPercentageTolerance"`
	Processes                  *int     `yaml:"processes"`
}

// outerHyperParams mirrors the teacher's kind/def envelope, letting one
// YAML file hold overrides for more than one subsystem keyed by "kind".
type outerHyperParams struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// LoadHyperParamOverrides reads path via viper, expecting a top-level
// "kind: training" / "def: {...}" envelope, and unmarshals "def" into a
// HyperParamOverrides through a yaml round trip.
func LoadHyperParamOverrides(path string) (*HyperParamOverrides, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read hyperparams %s: %w", path, err)
	}

	var outer outerHyperParams
	if err := vp.Unmarshal(&outer); err != nil {
		return nil, fmt.Errorf("config: unmarshal hyperparams %s: %w", path, err)
	}
	if outer.Kind != "" && outer.Kind != "training" {
		return nil, fmt.Errorf("config: hyperparams %s: unsupported kind %q", path, outer.Kind)
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("config: re-marshal hyperparams %s: %w", path, err)
	}
	overrides := &HyperParamOverrides{}
	if err := yaml.Unmarshal(spec, overrides); err != nil {
		return nil, fmt.Errorf("config: unmarshal hyperparams def %s: %w", path, err)
	}
	return overrides, nil
}

// Apply layers non-nil overrides onto cfg, respecting frozen fields
// exactly like a directive file.
func (h *HyperParamOverrides) Apply(cfg *TrainConfig) {
	if h == nil {
		return
	}
	if h.Discount != nil && !cfg.frozen["discount"] {
		cfg.Discount = *h.Discount
	}
	if h.MaxIter != nil && !cfg.frozen["maxiter"] {
		cfg.MaxIter = *h.MaxIter
	}
	if h.ValueTolerance != nil && !cfg.frozen["valuetolerance"] {
		cfg.ValueTolerance = *h.ValueTolerance
	}
	if h.ActionsTolerance != nil && !cfg.frozen["actiontolerance"] {
		cfg.ActionsTolerance = *h.ActionsTolerance
	}
	if h.ActionsPercentageTolerance != nil && !cfg.frozen["actionperctolerance"] {
		cfg.ActionsPercentageTolerance = *h.ActionsPercentageTolerance
	}
	if h.Processes != nil && !cfg.frozen["processes"] {
		cfg.Processes = *h.Processes
	}
}
