package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yoshimi/yoshidev/cmd/yoshidev/internal/history"
	"github.com/yoshimi/yoshidev/internal/log"
	"github.com/yoshimi/yoshidev/pkg/buildnum"
)

var bumpFlags struct {
	marker       string
	truncateTail bool
	noHistory    bool
	noLock       bool
	noWait       bool
}

var bumpCmd = &cobra.Command{
	Use:   "bump [file]",
	Short: "Increment the build number",
	Long: `Increments the build number stored in the counter file
(src/Misc/ConfBuild.h by default) and prints the new value.

The first line containing the marker ("#define BUILD_NUMBER") is rewritten
as "<marker> <n+1>". A marker with no value is reset to 0, a non-numeric
value restarts at 1, and a file without a marker line gets one appended
with value 1.

Lines after the counter line are kept unless --truncate-tail is given.
Concurrent runs against the same file are serialized with a file lock;
--no-wait fails instead of waiting for it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBump,
}

func init() {
	bumpCmd.Flags().StringVar(&bumpFlags.marker, "marker", "",
		"Prefix identifying the counter line")
	bumpCmd.Flags().BoolVar(&bumpFlags.truncateTail, "truncate-tail", false,
		"Drop everything after the rewritten counter line")
	bumpCmd.Flags().BoolVar(&bumpFlags.noHistory, "no-history", false,
		"Do not record the bump in .yoshidev/state.json")
	bumpCmd.Flags().BoolVar(&bumpFlags.noLock, "no-lock", false,
		"Skip the exclusive file lock")
	bumpCmd.Flags().BoolVar(&bumpFlags.noWait, "no-wait", false,
		"Fail instead of waiting when another bump holds the lock")

	rootCmd.AddCommand(bumpCmd)
}

func runBump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file := cfg.BuildNum.File
	if len(args) > 0 {
		file = args[0]
	}

	opts := buildnum.Options{
		Marker:       cfg.BuildNum.Marker,
		TruncateTail: cfg.TruncateTail(),
		NoLock:       bumpFlags.noLock,
		NoWait:       bumpFlags.noWait,
	}
	if cmd.Flags().Changed("marker") {
		opts.Marker = bumpFlags.marker
	}
	if cmd.Flags().Changed("truncate-tail") {
		opts.TruncateTail = bumpFlags.truncateTail
	}

	rec, err := buildnum.Increment(file, opts)
	if err != nil {
		return err
	}

	if cfg.HistoryEnabled() && !bumpFlags.noHistory {
		if err := recordBump(file, rec); err != nil {
			// The counter is already bumped; history is best effort.
			log.Warn("failed to record bump", "file", file, "error", err)
		}
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", rec)
	return err
}

func recordBump(file string, rec buildnum.Record) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	entry, err := history.NewTracker(wd).Record(file, rec)
	if err != nil {
		return err
	}
	log.Debug("bump recorded", "file", entry.File, "digest", entry.Digest, "bumps", entry.Bumps)
	return nil
}
