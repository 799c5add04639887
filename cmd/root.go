// Package cmd implements the command-line interface for simsweep.
// It provides the root command and subcommands for running parameter
// sweeps against the simulator and analyzing their results.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/simsweep/cmd/analyze"
	cmdcompare "github.com/jonesrussell/simsweep/cmd/compare"
	"github.com/jonesrussell/simsweep/cmd/run"
	"github.com/jonesrussell/simsweep/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug logging for all commands.
	Debug bool

	rootCmd = &cobra.Command{
		Use:   "simsweep",
		Short: "Parameter sweeps against an OMNeT++/Simu5G simulator",
		Long: `simsweep orchestrates transmit-power sweeps against an external
OMNeT++/Simu5G simulator, parses the resulting scalar artifacts and
produces per-power summaries, energy annotations and cross-scenario
comparisons.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available
	_ = godotenv.Load()

	// Parse flags early to get the debug flag before creating the logger
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("simsweep version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(run.Command())
	rootCmd.AddCommand(analyze.Command())
	rootCmd.AddCommand(cmdcompare.Command())
}

// initConfig reads the config file and environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Environment variables take precedence over file values and defaults,
	// e.g. SIMULATOR_BIN_DIR overrides simulator.bin_dir.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config.SetDefaults(viper.GetViper())

	// The config file is optional: defaults plus environment variables are
	// enough to run analyze and compare.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v (using defaults and environment variables)\n", err)
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if Debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
		Debug = true
	}
	return nil
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	if err := viper.BindEnv("logger.level", "LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}
	if err := viper.BindEnv("simulator.bin_dir", "OMNET_BIN_DIR"); err != nil {
		return fmt.Errorf("failed to bind OMNET_BIN_DIR: %w", err)
	}
	if err := viper.BindEnv("simulator.project_root", "SIMU5G_PROJECT_ROOT"); err != nil {
		return fmt.Errorf("failed to bind SIMU5G_PROJECT_ROOT: %w", err)
	}
	return nil
}
