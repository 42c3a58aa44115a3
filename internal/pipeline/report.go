// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/mathnotes/pkg/types"
)

// Reporter receives progress events as a run advances. Reporters are
// purely observational: they must not influence the run's outcome, and
// implementations swallow their own write failures.
type Reporter interface {
	Estimated(est types.CostEstimate)
	Submitted(job *types.ConversionJob)
	Polling(elapsed time.Duration, percentDone float64)
	Completed(job *types.ConversionJob)
	Failed(reason string)
	TimedOut(elapsed time.Duration)
	ManifestWritten(dir string)
}

// ConsoleReporter prints progress to a writer, typically stderr. Write
// errors are discarded; a broken output stream never fails a run.
type ConsoleReporter struct {
	W io.Writer
}

func (r *ConsoleReporter) Estimated(est types.CostEstimate) {
	fmt.Fprintf(r.W, "Estimated cost: $%.2f (%d pages, %s tier)\n", est.Amount, est.Pages, est.Tier)
}

func (r *ConsoleReporter) Submitted(job *types.ConversionJob) {
	fmt.Fprintf(r.W, "Submitted %s (job %s)\n", job.PDFPath, job.RemoteID)
}

func (r *ConsoleReporter) Polling(elapsed time.Duration, percentDone float64) {
	fmt.Fprintf(r.W, "Processing... %.0f%% (%s elapsed)\n", percentDone, elapsed.Round(time.Second))
}

func (r *ConsoleReporter) Completed(job *types.ConversionJob) {
	fmt.Fprintf(r.W, "Conversion complete (job %s)\n", job.RemoteID)
}

func (r *ConsoleReporter) Failed(reason string) {
	fmt.Fprintf(r.W, "Conversion failed: %s\n", reason)
}

func (r *ConsoleReporter) TimedOut(elapsed time.Duration) {
	fmt.Fprintf(r.W, "Gave up waiting after %s; the job may still finish remotely\n", elapsed.Round(time.Second))
}

func (r *ConsoleReporter) ManifestWritten(dir string) {
	fmt.Fprintf(r.W, "Outputs written to %s\n", dir)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Estimated(types.CostEstimate) {}
func (NopReporter) Submitted(*types.ConversionJob) {}
func (NopReporter) Polling(time.Duration, float64) {}
func (NopReporter) Completed(*types.ConversionJob) {}
func (NopReporter) Failed(string) {}
func (NopReporter) TimedOut(time.Duration) {}
func (NopReporter) ManifestWritten(string) {}
