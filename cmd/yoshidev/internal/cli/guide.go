package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yoshimi/yoshidev/cmd/yoshidev/internal/watch"
	"github.com/yoshimi/yoshidev/internal/log"
	"github.com/yoshimi/yoshidev/pkg/config"
	"github.com/yoshimi/yoshidev/pkg/guideversion"
)

var guideFlags struct {
	versionFile string
	document    string
	template    string
	padded      bool
	watch       bool
	debounce    int
	verbose     bool
	json        bool
	noColor     bool
}

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Stamp the program version into the HTML user guide",
	Long: `Reads the version from the first word of src/version.txt and writes it
into the "The Yoshimi User Guide V..." heading of the user guide.

Without --template the heading of the document is rewritten in place and
padded to a fixed width. With --template the document is regenerated from
the reference page.

With --watch the guide is regenerated whenever the version file (or the
template) changes. Press Ctrl+C to stop watching.`,
	Args: cobra.NoArgs,
	RunE: runGuide,
}

func init() {
	guideCmd.Flags().StringVar(&guideFlags.versionFile, "version-file", "",
		"File whose first word is the version (default src/version.txt)")
	guideCmd.Flags().StringVar(&guideFlags.document, "document", "",
		"Guide page to write (default doc/yoshimi_user_guide/index.html)")
	guideCmd.Flags().StringVar(&guideFlags.template, "template", "",
		"Reference page to regenerate the document from")
	guideCmd.Flags().BoolVar(&guideFlags.padded, "padded", false,
		"Pad the heading to a fixed width in template mode")
	guideCmd.Flags().BoolVar(&guideFlags.watch, "watch", false,
		"Regenerate whenever the inputs change")
	guideCmd.Flags().IntVar(&guideFlags.debounce, "debounce", 300,
		"Watch debounce window in milliseconds")
	guideCmd.Flags().BoolVar(&guideFlags.verbose, "verbose", false,
		"Show file-level changes in watch mode")
	guideCmd.Flags().BoolVar(&guideFlags.json, "json", false,
		"Stream JSON events in watch mode")
	guideCmd.Flags().BoolVar(&guideFlags.noColor, "no-color", false,
		"Disable colored output")

	rootCmd.AddCommand(guideCmd)
}

// guideJob is the resolved set of guide inputs and outputs.
type guideJob struct {
	versionFile string
	document    string
	template    string
	padded      bool
}

func newGuideJob(cmd *cobra.Command, cfg *config.Config) guideJob {
	job := guideJob{
		versionFile: cfg.Guide.VersionFile,
		document:    cfg.Guide.Document,
		template:    cfg.Guide.Template,
		padded:      cfg.Padded(),
	}
	if cmd.Flags().Changed("version-file") {
		job.versionFile = guideFlags.versionFile
	}
	if cmd.Flags().Changed("document") {
		job.document = guideFlags.document
	}
	if cmd.Flags().Changed("template") {
		job.template = guideFlags.template
	}
	if cmd.Flags().Changed("padded") {
		job.padded = guideFlags.padded
	}
	return job
}

// inputs returns the files the job reads.
func (j guideJob) inputs() []string {
	if j.template != "" {
		return []string{j.versionFile, j.template}
	}
	return []string{j.versionFile}
}

func (j guideJob) run() (guideversion.Result, error) {
	version, err := guideversion.ReadVersion(j.versionFile)
	if err != nil {
		return guideversion.Result{}, err
	}
	if j.template != "" {
		return guideversion.SpliceTemplate(j.template, j.document, version, j.padded)
	}
	return guideversion.SpliceInPlace(j.document, version)
}

func runGuide(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	job := newGuideJob(cmd, cfg)

	if guideFlags.watch {
		return watchGuide(cmd, job)
	}

	res, err := job.run()
	if err != nil {
		return err
	}
	log.Info("guide updated", "document", res.Path, "version", res.Version, "headings", res.Headings)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: V%s\n", res.Path, res.Version)
	return err
}

func watchGuide(cmd *cobra.Command, job guideJob) error {
	logger := watch.NewLogger(watch.LoggerConfig{
		Writer:  cmd.OutOrStdout(),
		Verbose: guideFlags.verbose,
		NoColor: guideFlags.noColor,
		JSON:    guideFlags.json,
	})

	action := func([]string) (string, string, error) {
		res, err := job.run()
		if err != nil {
			return "", "", err
		}
		return res.Path, "V" + res.Version, nil
	}

	// Bring the guide up to date before waiting for changes.
	if output, detail, err := action(nil); err != nil {
		logger.Error(err)
	} else {
		logger.Updated(output, detail)
	}

	// Include SIGHUP to handle terminal hangup
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	w, err := watch.New(watch.Config{
		Files:    job.inputs(),
		Action:   action,
		Debounce: time.Duration(guideFlags.debounce) * time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Run(ctx)
}
