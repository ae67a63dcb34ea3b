// Package cli implements the yoshidev command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yoshimi/yoshidev/internal/log"
	"github.com/yoshimi/yoshidev/pkg/config"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	verbosity  int
	logFormat  string
	configFile string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yoshidev",
	Short: "Developer utilities for the Yoshimi source tree",
	Long: `yoshidev bundles the small maintenance tasks of the Yoshimi tree:

  bump    increment the build number in src/Misc/ConfBuild.h
  show    print the current build number
  status  report whether the counter changed since the last bump
  guide   stamp the program version into the HTML user guide
  udp     send interactive commands to a running instance over UDP
  config  print the effective configuration

Paths are relative to the current directory and can be set in
yoshidev.toml, .yoshidev/config.toml or YOSHIDEV_* variables.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "yoshidev %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().IntVarP(&globalFlags.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logFormat, "log-format", "text",
		"Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.configFile, "config", "",
		"Explicit config file (merged over discovered config)")

	cobra.OnInitialize(initLogging)
}

// initLogging applies CLI flags to the logger.
// This runs after flags are parsed but before command execution.
func initLogging() {
	log.Init(globalFlags.verbosity, globalFlags.logFormat)
}

// loadConfig resolves the layered configuration for the current directory.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	if globalFlags.configFile != "" {
		return config.LoadWithFile(wd, globalFlags.configFile)
	}

	cfg := config.LoadFrom(wd)
	log.Debug("config loaded", "dir", wd)
	return cfg, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
