package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yoshimi/yoshidev/internal/log"
	"github.com/yoshimi/yoshidev/pkg/buildnum"
)

var showFlags struct {
	marker string
}

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the current build number",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFlags.marker, "marker", "",
		"Prefix identifying the counter line")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file := cfg.BuildNum.File
	if len(args) > 0 {
		file = args[0]
	}
	marker := cfg.BuildNum.Marker
	if cmd.Flags().Changed("marker") {
		marker = showFlags.marker
	}

	rec, err := buildnum.Read(file, marker)
	if err != nil {
		return err
	}
	if !rec.Found {
		log.Warn("no counter line found", "file", file, "marker", rec.Marker)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rec)
	return err
}
