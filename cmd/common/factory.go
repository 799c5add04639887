package common

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/simsweep/internal/config"
	"github.com/jonesrussell/simsweep/internal/logger"
)

// NewCommandDeps creates CommandDeps by loading config and creating the
// logger. This consolidates the initialization every subcommand needs.
func NewCommandDeps() (CommandDeps, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{
		Logger: log,
		Config: cfg,
	}
	if validateErr := deps.Validate(); validateErr != nil {
		return CommandDeps{}, fmt.Errorf("validate deps: %w", validateErr)
	}
	return deps, nil
}
