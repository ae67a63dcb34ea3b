package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yoshimi/yoshidev/cmd/yoshidev/internal/history"
	"github.com/yoshimi/yoshidev/pkg/buildnum"
)

var statusFlags struct {
	json  bool
	reset bool
}

var statusCmd = &cobra.Command{
	Use:   "status [file]",
	Short: "Show whether the counter file changed since the last bump",
	Long: `Shows the current build number and compares the counter file against
the digest recorded by the last 'yoshidev bump'.

A file reported as modified was edited (or bumped with --no-history)
after the last recorded bump.

The --json flag outputs the result as JSON for scripting. The --reset
flag forgets all recorded bumps instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusFlags.json, "json", false,
		"Output as JSON")
	statusCmd.Flags().BoolVar(&statusFlags.reset, "reset", false,
		"Forget all recorded bumps")

	rootCmd.AddCommand(statusCmd)
}

// StatusOutput is the JSON output format for yoshidev status.
type StatusOutput struct {
	File        string     `json:"file"`
	Found       bool       `json:"found"`
	BuildNumber int64      `json:"build_number"`
	Tracked     bool       `json:"tracked"`
	Modified    bool       `json:"modified"`
	LastValue   *int64     `json:"last_value,omitempty"`
	LastBumpAt  *time.Time `json:"last_bump_at,omitempty"`
	Bumps       int        `json:"bumps,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	tracker := history.NewTracker(wd)

	if statusFlags.reset {
		return resetHistory(cmd.OutOrStdout(), tracker)
	}

	file := cfg.BuildNum.File
	if len(args) > 0 {
		file = args[0]
	}

	rec, err := buildnum.Read(file, cfg.BuildNum.Marker)
	if err != nil {
		return err
	}

	st, err := tracker.Status(file)
	if err != nil {
		return fmt.Errorf("failed to check history: %w", err)
	}

	out := StatusOutput{
		File:        st.File,
		Found:       rec.Found,
		BuildNumber: rec.Value,
		Tracked:     st.Tracked(),
		Modified:    st.Modified,
	}
	if st.Entry != nil {
		out.LastValue = &st.Entry.Value
		out.LastBumpAt = &st.Entry.BumpedAt
		out.Bumps = st.Entry.Bumps
	}

	if statusFlags.json {
		return outputJSON(cmd.OutOrStdout(), out)
	}
	return printStatus(cmd.OutOrStdout(), rec, out)
}

func resetHistory(w io.Writer, tracker *history.Tracker) error {
	if !tracker.HasState() {
		_, err := fmt.Fprintln(w, "No bump history to reset.")
		return err
	}
	if err := tracker.Clear(); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	_, err := fmt.Fprintln(w, "Bump history cleared.")
	return err
}

func printStatus(w io.Writer, rec buildnum.Record, out StatusOutput) error {
	if !out.Found {
		_, err := fmt.Fprintf(w, "%s: no %q line\n", out.File, rec.Marker)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s (%s)\n", rec, out.File); err != nil {
		return err
	}

	var err error
	switch {
	case !out.Tracked:
		_, err = fmt.Fprintln(w, "No recorded bump. Run 'yoshidev bump' to start tracking.")
	case out.Modified:
		_, err = fmt.Fprintf(w, "Modified since last bump to %d at %s\n",
			*out.LastValue, out.LastBumpAt.Local().Format(time.DateTime))
	default:
		_, err = fmt.Fprintf(w, "Unchanged since last bump at %s (%d bumps recorded)\n",
			out.LastBumpAt.Local().Format(time.DateTime), out.Bumps)
	}
	return err
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
