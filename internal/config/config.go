// Package config holds the tool configuration. Components receive an
// explicit Config value at construction; nothing reads ambient path
// constants directly.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/simsweep/internal/logger"
)

// Simulator describes how to invoke the external OMNeT++/Simu5G binary.
type Simulator struct {
	// BinDir is the directory containing the opp_run binary.
	BinDir string `mapstructure:"bin_dir"`
	// Binary is the simulator executable name inside BinDir.
	Binary string `mapstructure:"binary"`
	// ProjectRoot is the Simu5G project checkout; simulator processes run
	// with this as their working directory.
	ProjectRoot string `mapstructure:"project_root"`
	// ConfigName selects the named simulation configuration inside IniPath.
	ConfigName string `mapstructure:"config_name"`
	// IniPath is the omnetpp ini file holding ConfigName.
	IniPath string `mapstructure:"ini_path"`
	// NedPaths are joined into the -n argument.
	NedPaths []string `mapstructure:"ned_paths"`
	// Libs are shared libraries passed via -l.
	Libs []string `mapstructure:"libs"`
	// ResultsDir is the base directory for sweep results. Defaults to
	// <project_root>/results.
	ResultsDir string `mapstructure:"results_dir"`
	// RunTimeout bounds a single simulator process. Zero means wait
	// forever; a hung simulator then blocks its worker slot, which is the
	// documented default behaviour.
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

// Config is the root tool configuration.
type Config struct {
	Simulator Simulator     `mapstructure:"simulator"`
	Logger    logger.Config `mapstructure:"logger"`
}

// SetDefaults registers configuration defaults on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("simulator.binary", "opp_run")
	v.SetDefault("simulator.config_name", "TrainingToy1_1")
	v.SetDefault("logger.level", "info")
}

// Load unmarshals the tool configuration from the given viper instance.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Simulator.ResultsDir == "" && cfg.Simulator.ProjectRoot != "" {
		cfg.Simulator.ResultsDir = filepath.Join(cfg.Simulator.ProjectRoot, "results")
	}
	return &cfg, nil
}

// BinaryPath returns the full path of the simulator executable.
func (s Simulator) BinaryPath() string {
	return filepath.Join(s.BinDir, s.Binary)
}
