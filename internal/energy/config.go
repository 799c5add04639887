// Package energy implements the gNB power/energy model applied to
// aggregated sweep results.
package energy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default coefficients used when the configuration leaves them unset.
const (
	DefaultSimTimeS   = 20.0
	DefaultDelayRefMs = 10.0
)

// General holds the model coefficients.
type General struct {
	IdlePowerW float64 `yaml:"idle_power_w" json:"idle_power_w"`
	Alpha      float64 `yaml:"alpha" json:"alpha"`
	Beta       float64 `yaml:"beta" json:"beta"`
	Gamma      float64 `yaml:"gamma" json:"gamma"`
	SimTimeS   float64 `yaml:"sim_time_s" json:"sim_time_s"`
	DelayRefMs float64 `yaml:"delay_ref_ms" json:"delay_ref_ms"`
}

// Limits optionally clamps the total power. A nil bound means no clamp on
// that side.
type Limits struct {
	MinPowerW *float64 `yaml:"min_power_w" json:"min_power_w,omitempty"`
	MaxPowerW *float64 `yaml:"max_power_w" json:"max_power_w,omitempty"`
}

// Config is the energy-model configuration document.
type Config struct {
	General General `yaml:"general" json:"general"`
	Limits  Limits  `yaml:"limits" json:"limits"`
}

// SetDefaults fills unset coefficients with the reference defaults.
func (c *Config) SetDefaults() {
	if c.General.SimTimeS == 0 {
		c.General.SimTimeS = DefaultSimTimeS
	}
	if c.General.DelayRefMs == 0 {
		c.General.DelayRefMs = DefaultDelayRefMs
	}
}

// LoadConfig reads an energy configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read energy config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse energy config %s: %w", path, err)
	}
	cfg.SetDefaults()
	return cfg, nil
}
