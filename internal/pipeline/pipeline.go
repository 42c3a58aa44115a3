// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one document through estimation, submission,
// polling, and output assembly, strictly in sequence. One job is in
// flight per run; every stage failure aborts the run and surfaces the
// originating error unchanged.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pdiddy/mathnotes/internal/assemble"
	"github.com/pdiddy/mathnotes/internal/history"
	"github.com/pdiddy/mathnotes/internal/mathpix"
	"github.com/pdiddy/mathnotes/internal/pricing"
	"github.com/pdiddy/mathnotes/pkg/types"
)

// timestampLayout names output directories, one per run.
const timestampLayout = "20060102_150405"

// now is swapped out by tests for stable timestamps.
var now = time.Now

// ErrAborted is returned when the user declines the cost confirmation.
var ErrAborted = errors.New("conversion aborted before submission")

// ConversionService is the remote capability the driver orchestrates.
// *mathpix.Client satisfies it; tests substitute an in-memory fake.
type ConversionService interface {
	Submit(ctx context.Context, pdfPath string, formats []types.Format) (*types.ConversionJob, error)
	WaitForCompletion(ctx context.Context, job *types.ConversionJob, onPoll func(elapsed time.Duration, percentDone float64)) error
	FetchResult(ctx context.Context, job *types.ConversionJob) (types.ConversionResult, error)
}

// PageCounter probes a local PDF for its page count.
type PageCounter func(path string) (int, error)

// ConfirmFunc decides whether to proceed once the estimate is known.
// A nil ConfirmFunc means no confirmation is required.
type ConfirmFunc func(est types.CostEstimate) bool

// StageTiming is the wall-clock duration of one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result is the outcome of a successful run.
type Result struct {
	Job      *types.ConversionJob
	Estimate types.CostEstimate
	Manifest *types.OutputManifest
	Timings  []StageTiming
}

// Driver sequences one conversion run.
type Driver struct {
	Service    ConversionService
	Pages      PageCounter
	Reporter   Reporter
	Ledger     *history.Store // nil disables job recording
	OutputRoot string
	Confirm    ConfirmFunc
}

// Run takes pdfPath through the full pipeline and returns the manifest
// location on success. Errors keep their stage-specific types
// (mathpix.SubmissionError, mathpix.PollError, mathpix.TimeoutError,
// mathpix.RemoteFailure, assemble.WriteError) so callers can
// distinguish what failed.
func (d *Driver) Run(ctx context.Context, pdfPath string, formats []types.Format) (*Result, error) {
	reporter := d.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	res := &Result{}
	stageStart := now()
	mark := func(stage string) {
		t := now()
		res.Timings = append(res.Timings, StageTiming{Stage: stage, Duration: t.Sub(stageStart)})
		stageStart = t
	}

	pages, err := d.Pages(pdfPath)
	if err != nil {
		return nil, err
	}
	est, err := pricing.Estimate(pages)
	if err != nil {
		return nil, err
	}
	res.Estimate = est
	reporter.Estimated(est)
	mark("estimate")

	if d.Confirm != nil && !d.Confirm(est) {
		return nil, ErrAborted
	}

	job, err := d.Service.Submit(ctx, pdfPath, formats)
	if err != nil {
		return nil, err
	}
	res.Job = job
	reporter.Submitted(job)
	mark("submit")

	err = d.Service.WaitForCompletion(ctx, job, reporter.Polling)
	if err != nil {
		var timeoutErr *mathpix.TimeoutError
		var remoteErr *mathpix.RemoteFailure
		switch {
		case errors.As(err, &timeoutErr):
			// Locally terminal; the remote job is left to its own fate.
			job.Status = types.StatusTimedOut
			reporter.TimedOut(timeoutErr.Elapsed)
			d.record(job, est, "")
		case errors.As(err, &remoteErr):
			reporter.Failed(remoteErr.Reason)
			d.record(job, est, "")
		}
		return nil, err
	}
	reporter.Completed(job)
	mark("poll")

	result, err := d.Service.FetchResult(ctx, job)
	if err != nil {
		return nil, err
	}
	mark("fetch")

	manifest, err := assemble.Assemble(result, d.OutputRoot, now().Format(timestampLayout), job)
	if err != nil {
		return nil, err
	}
	res.Manifest = manifest
	reporter.ManifestWritten(manifest.Dir)
	mark("assemble")

	d.record(job, est, manifest.Dir)
	return res, nil
}

// record appends the run to the ledger when one is configured. The
// outputs are already on disk by the time a successful run is
// recorded, so a ledger failure is only worth a warning.
func (d *Driver) record(job *types.ConversionJob, est types.CostEstimate, manifestDir string) {
	if d.Ledger == nil {
		return
	}
	err := d.Ledger.Record(history.Entry{
		RequestID:     job.RequestID,
		RemoteID:      job.RemoteID,
		PDFPath:       job.PDFPath,
		Formats:       job.Formats,
		Pages:         est.Pages,
		EstimatedCost: est.Amount,
		Status:        job.Status,
		FailureReason: job.FailureReason,
		ManifestDir:   manifestDir,
		SubmittedAt:   job.SubmittedAt,
		FinishedAt:    now(),
	})
	if err != nil {
		slog.Warn("recording job in ledger failed", "request_id", job.RequestID, "error", err)
	}
}
