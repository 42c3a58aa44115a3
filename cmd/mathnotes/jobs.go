package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mathnotes/internal/history"
	"github.com/pdiddy/mathnotes/pkg/types"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List past conversion jobs from the local ledger",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().Int("limit", 20, "maximum number of jobs to list")
	jobsCmd.Flags().String("ledger", "", "job ledger database (default <output root>/jobs.db)")
	jobsCmd.Flags().String("output", "", "output root directory (default \"processed_notes\")")

	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	ledgerPath, _ := cmd.Flags().GetString("ledger")
	if ledgerPath == "" {
		ledgerPath = cfg.Ledger.Path
	}
	if ledgerPath == "" {
		outputRoot, _ := cmd.Flags().GetString("output")
		if outputRoot == "" {
			outputRoot = cfg.Output.Root
		}
		if outputRoot == "" {
			outputRoot = defaultOutputRoot
		}
		ledgerPath = filepath.Join(outputRoot, ledgerFile)
	}

	store, err := history.NewStore(ledgerPath)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", ledgerPath, err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded.")
		return nil
	}

	for _, e := range entries {
		formats := make([]string, len(e.Formats))
		for i, f := range e.Formats {
			formats[i] = string(f)
		}
		line := fmt.Sprintf("%s  %-10s  %4d pages  $%7.2f  %s [%s]",
			e.SubmittedAt.Format("2006-01-02 15:04"), e.Status, e.Pages,
			e.EstimatedCost, e.PDFPath, strings.Join(formats, ","))
		if e.Status == types.StatusFailed && e.FailureReason != "" {
			line += "  (" + e.FailureReason + ")"
		}
		if e.ManifestDir != "" {
			line += "  -> " + e.ManifestDir
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
