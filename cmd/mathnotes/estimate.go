package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mathnotes/internal/pagecount"
	"github.com/pdiddy/mathnotes/internal/pricing"
)

// countPages is package-level so tests can stub the PDF probe.
var countPages = pagecount.Pages

var estimateCmd = &cobra.Command{
	Use:   "estimate <pdf>",
	Short: "Estimate the conversion cost for a PDF",
	Long: `Estimate counts the pages of a local PDF and prices the conversion
under the tiered per-page schedule, without contacting the service.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	pages, err := countPages(args[0])
	if err != nil {
		return err
	}

	est, err := pricing.Estimate(pages)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages, %s tier, estimated $%.2f\n",
		args[0], est.Pages, est.Tier, est.Amount)
	return nil
}
