package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/yoshimi/yoshidev/pkg/config"
)

var configFlags struct {
	paths bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the configuration after merging defaults, the global and project
config files, and YOSHIDEV_* environment variables, as TOML.

With --paths the candidate config file locations are listed instead.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configFlags.paths, "paths", false,
		"List config file locations and whether they exist")

	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configFlags.paths {
		return printConfigPaths(cmd)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
}

func printConfigPaths(cmd *cobra.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	paths := []string{config.GetGlobalConfigPath()}
	paths = append(paths, config.GetProjectConfigPaths(wd)...)
	if globalFlags.configFile != "" {
		paths = append(paths, globalFlags.configFile)
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		if p == "" {
			continue
		}
		state := "missing"
		if _, err := os.Stat(p); err == nil {
			state = "found"
		}
		if _, err := fmt.Fprintf(out, "%-8s %s\n", state, p); err != nil {
			return err
		}
	}
	return nil
}
