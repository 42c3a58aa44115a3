package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mathnotes/internal/credentials"
	"github.com/pdiddy/mathnotes/internal/history"
	"github.com/pdiddy/mathnotes/internal/mathpix"
	"github.com/pdiddy/mathnotes/internal/pagecount"
	"github.com/pdiddy/mathnotes/internal/pipeline"
	"github.com/pdiddy/mathnotes/pkg/types"
)

const (
	defaultPDFPath    = "lecture_notes.pdf"
	defaultOutputRoot = "processed_notes"
	defaultEnvFile    = ".env"
	defaultUserAgent  = "mathnotes/0.1"
	ledgerFile        = "jobs.db"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdf]",
	Short: "Convert a PDF into LaTeX, Markdown, and HTML",
	Long: `Convert submits a PDF to the conversion service, waits for processing
to finish, and writes one file per requested format into a timestamped
directory under the output root. The estimated cost is shown before
submission; pass --yes to skip the confirmation prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("output", "", "output root directory (default \"processed_notes\")")
	convertCmd.Flags().StringSlice("formats", []string{"latex", "markdown", "html"}, "output formats to request")
	convertCmd.Flags().Duration("poll-interval", 0, "delay between status checks (default 2s)")
	convertCmd.Flags().Duration("timeout", 0, "maximum wait for the conversion to finish (default 10m)")
	convertCmd.Flags().Bool("timing", false, "print per-stage wall-clock timings")
	convertCmd.Flags().Bool("yes", false, "proceed without the cost confirmation prompt")
	convertCmd.Flags().String("env-file", defaultEnvFile, "env file holding MATHPIX_APP_ID and MATHPIX_APP_KEY")
	convertCmd.Flags().String("ledger", "", "job ledger database (default <output>/jobs.db)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	pdfPath := defaultPDFPath
	if len(args) == 1 {
		pdfPath = args[0]
	}

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	outputRoot, _ := cmd.Flags().GetString("output")
	if outputRoot == "" {
		outputRoot = cfg.Output.Root
	}
	if outputRoot == "" {
		outputRoot = defaultOutputRoot
	}

	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	if pollInterval == 0 {
		pollInterval = cfg.Conversion.PollInterval
	}
	maxWait, _ := cmd.Flags().GetDuration("timeout")
	if maxWait == 0 {
		maxWait = cfg.Conversion.MaxWait
	}

	formatNames, _ := cmd.Flags().GetStringSlice("formats")
	formats, err := types.ParseFormats(formatNames)
	if err != nil {
		return err
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	creds, err := credentials.Load(envFile)
	if err != nil {
		// Same class of failure as the client's own credential guard.
		return &mathpix.SubmissionError{Err: err}
	}

	userAgent := cfg.Conversion.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := mathpix.NewClient(creds, types.ConversionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   cfg.Conversion.Timeout,
			UserAgent: userAgent,
		},
		PollInterval: pollInterval,
		MaxWait:      maxWait,
	})

	ledgerPath, _ := cmd.Flags().GetString("ledger")
	if ledgerPath == "" {
		ledgerPath = cfg.Ledger.Path
	}
	if ledgerPath == "" {
		ledgerPath = filepath.Join(outputRoot, ledgerFile)
	}
	ledger, err := history.NewStore(ledgerPath)
	if err != nil {
		// Conversions still work without the ledger.
		slog.Warn("opening job ledger failed", "path", ledgerPath, "error", err)
		ledger = nil
	} else {
		defer ledger.Close()
	}

	driver := &pipeline.Driver{
		Service:    client,
		Pages:      pagecount.Pages,
		Reporter:   &pipeline.ConsoleReporter{W: cmd.OutOrStdout()},
		Ledger:     ledger,
		OutputRoot: outputRoot,
	}
	if skip, _ := cmd.Flags().GetBool("yes"); !skip {
		driver.Confirm = promptConfirm(cmd)
	}

	res, err := driver.Run(cmd.Context(), pdfPath, formats)
	if errors.Is(err, pipeline.ErrAborted) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err != nil {
		return err
	}

	if timing, _ := cmd.Flags().GetBool("timing"); timing {
		for _, st := range res.Timings {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", st.Stage, st.Duration.Round(time.Millisecond))
		}
	}
	return nil
}

// promptConfirm asks the user whether to proceed at the estimated cost.
// Anything other than an explicit yes declines.
func promptConfirm(cmd *cobra.Command) pipeline.ConfirmFunc {
	return func(est types.CostEstimate) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "Proceed with conversion (~$%.2f)? [y/N] ", est.Amount)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	}
}
