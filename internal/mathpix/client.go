// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mathpix implements the client for the Mathpix v3 PDF API:
// document submission, status polling, and per-format result download.
package mathpix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/mathnotes/internal/httputil"
	"github.com/pdiddy/mathnotes/pkg/types"
)

// apiBase is package-level so tests can point the client at a fake server.
var apiBase = "https://api.mathpix.com/v3"

// now and sleep are swapped out by tests to simulate elapsed time
// without real waiting.
var (
	now   = time.Now
	sleep = func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
)

const (
	defaultTimeout      = 60 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMaxWait      = 10 * time.Minute
)

// remoteExtensions maps output formats to the download extension the
// service uses for them.
var remoteExtensions = map[types.Format]string{
	types.FormatLaTeX:    "tex",
	types.FormatMarkdown: "mmd",
	types.FormatHTML:     "html",
}

// processingOptions mirrors the options_json payload the submission
// endpoint accepts. The math and table settings match what we want for
// lecture notes: inline math in $...$, display math in $$...$$, tables
// recovered even when detection is uncertain.
type processingOptions struct {
	ConversionFormats     map[string]bool `json:"conversion_formats"`
	MathInlineDelimiters  []string        `json:"math_inline_delimiters"`
	MathDisplayDelimiters []string        `json:"math_display_delimiters"`
	RmSpaces              bool            `json:"rm_spaces"`
	EnableTablesFallback  bool            `json:"enable_tables_fallback"`
	IncludeEquationTags   bool            `json:"include_equation_tags"`
	NumbersDefaultToMath  bool            `json:"numbers_default_to_math"`
}

// submitResponse is the submission endpoint's acceptance payload.
type submitResponse struct {
	PDFID string `json:"pdf_id"`
	Error string `json:"error,omitempty"`
}

// statusResponse is the status endpoint's payload. PercentDone and the
// page counters are only present while the job is in flight.
type statusResponse struct {
	Status            string  `json:"status"`
	PercentDone       float64 `json:"percent_done"`
	NumPagesCompleted int     `json:"num_pages_completed"`
	NumPages          int     `json:"num_pages"`
	Error             string  `json:"error,omitempty"`
}

// Client talks to the conversion service. Credentials are supplied at
// construction; business logic never reads them from ambient state.
type Client struct {
	creds        types.Credentials
	http         *http.Client
	userAgent    string
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewClient builds a Client from explicit credentials and configuration,
// filling in defaults for unset durations.
func NewClient(creds types.Credentials, cfg types.ConversionConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}
	maxWait := cfg.MaxWait
	if maxWait == 0 {
		maxWait = defaultMaxWait
	}
	return &Client{
		creds:        creds,
		http:         &http.Client{Timeout: timeout},
		userAgent:    cfg.UserAgent,
		pollInterval: pollInterval,
		maxWait:      maxWait,
	}
}

// authorize sets the credential headers the service expects.
func (c *Client) authorize(req *http.Request) {
	req.Header.Set("app_id", c.creds.AppID)
	req.Header.Set("app_key", c.creds.AppKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// Submit uploads the PDF at pdfPath with the requested output formats
// and returns the tracking job. The file is read before any network
// traffic so an unreadable input never reaches the service. All
// failure modes surface as *SubmissionError.
func (c *Client) Submit(ctx context.Context, pdfPath string, formats []types.Format) (*types.ConversionJob, error) {
	if c.creds.AppID == "" || c.creds.AppKey == "" {
		return nil, &SubmissionError{Err: errors.New("missing credentials")}
	}

	content, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("reading %s: %w", pdfPath, err)}
	}

	body, contentType, err := buildSubmission(filepath.Base(pdfPath), content, formats)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/pdf", body)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := httputil.DoWithRetry(c.http, req, 0)
	if err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("sending submission: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &SubmissionError{Err: fmt.Errorf("credentials rejected (HTTP %d)", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &SubmissionError{Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, readBodySnippet(resp.Body))}
	}

	var accepted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return nil, &SubmissionError{Err: fmt.Errorf("parsing submission response: %w", err)}
	}
	if accepted.Error != "" {
		return nil, &SubmissionError{Err: errors.New(accepted.Error)}
	}
	if accepted.PDFID == "" {
		return nil, &SubmissionError{Err: errors.New("submission response carried no pdf_id")}
	}

	return &types.ConversionJob{
		PDFPath:     pdfPath,
		RemoteID:    accepted.PDFID,
		RequestID:   uuid.NewString(),
		Formats:     formats,
		SubmittedAt: now(),
		Status:      types.StatusPending,
	}, nil
}

// buildSubmission assembles the multipart body: the file part plus an
// options_json part carrying the processing options.
func buildSubmission(filename string, content []byte, formats []types.Format) (io.Reader, string, error) {
	opts := processingOptions{
		ConversionFormats:     make(map[string]bool, len(formats)),
		MathInlineDelimiters:  []string{"$", "$"},
		MathDisplayDelimiters: []string{"$$", "$$"},
		RmSpaces:              true,
		EnableTablesFallback:  true,
		IncludeEquationTags:   true,
		NumbersDefaultToMath:  true,
	}
	for _, f := range formats {
		ext, ok := remoteExtensions[f]
		if !ok {
			return nil, "", fmt.Errorf("unsupported format %q", f)
		}
		opts.ConversionFormats[ext] = true
	}

	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling options: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("options_json", string(optsJSON)); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// Poll refreshes the job's status from the service. Jobs already in a
// terminal status are rejected without any network traffic. Transport
// failures and uninterpretable responses surface as *PollError.
func (c *Client) Poll(ctx context.Context, job *types.ConversionJob) error {
	if job.Status.Terminal() {
		return fmt.Errorf("job %s is already %s", job.RemoteID, job.Status)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/pdf/"+job.RemoteID, nil)
	if err != nil {
		return &PollError{Err: err}
	}
	c.authorize(req)

	resp, err := httputil.DoWithRetry(c.http, req, 0)
	if err != nil {
		return &PollError{Err: fmt.Errorf("status request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &PollError{Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, readBodySnippet(resp.Body))}
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return &PollError{Err: fmt.Errorf("parsing status response: %w", err)}
	}
	if status.Status == "" {
		return &PollError{Err: errors.New("status response carried no status field")}
	}

	job.PercentDone = status.PercentDone
	job.PagesDone = status.NumPagesCompleted
	job.PagesTotal = status.NumPages

	switch status.Status {
	case "completed":
		job.Status = types.StatusComplete
	case "error":
		job.Status = types.StatusFailed
		job.FailureReason = status.Error
		if job.FailureReason == "" {
			job.FailureReason = "unspecified remote error"
		}
	default:
		// received, loaded, split, processing: still in flight.
		job.Status = types.StatusProcessing
	}
	return nil
}

// WaitForCompletion polls at the configured interval until the job
// reaches a terminal status or the maximum wait elapses. onPoll, if
// non-nil, is invoked after each non-terminal check with the elapsed
// time and percent done. The return is nil on completion, a
// *RemoteFailure when the service reports the job failed, a
// *TimeoutError when the wait cap is exceeded, a *PollError on
// transport trouble, or the context error on cancellation.
func (c *Client) WaitForCompletion(ctx context.Context, job *types.ConversionJob, onPoll func(elapsed time.Duration, percentDone float64)) error {
	start := now()
	for {
		if err := c.Poll(ctx, job); err != nil {
			return err
		}

		switch job.Status {
		case types.StatusComplete:
			return nil
		case types.StatusFailed:
			return &RemoteFailure{RemoteID: job.RemoteID, Reason: job.FailureReason}
		}

		elapsed := now().Sub(start)
		if onPoll != nil {
			onPoll(elapsed, job.PercentDone)
		}
		if elapsed+c.pollInterval > c.maxWait {
			return &TimeoutError{RemoteID: job.RemoteID, Elapsed: elapsed}
		}
		if err := sleep(ctx, c.pollInterval); err != nil {
			return err
		}
	}
}

// FetchResult downloads the content for each requested format of a
// completed job. Download failures surface as *PollError.
func (c *Client) FetchResult(ctx context.Context, job *types.ConversionJob) (types.ConversionResult, error) {
	if job.Status != types.StatusComplete {
		return nil, fmt.Errorf("job %s is %s, not complete", job.RemoteID, job.Status)
	}

	result := make(types.ConversionResult, len(job.Formats))
	for _, f := range job.Formats {
		content, err := c.fetchFormat(ctx, job.RemoteID, f)
		if err != nil {
			return nil, err
		}
		result[f] = content
	}
	return result, nil
}

func (c *Client) fetchFormat(ctx context.Context, remoteID string, f types.Format) ([]byte, error) {
	ext, ok := remoteExtensions[f]
	if !ok {
		return nil, &PollError{Err: fmt.Errorf("unsupported format %q", f)}
	}

	url := fmt.Sprintf("%s/pdf/%s.%s", apiBase, remoteID, ext)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &PollError{Err: err}
	}
	c.authorize(req)

	resp, err := httputil.DoWithRetry(c.http, req, 0)
	if err != nil {
		return nil, &PollError{Err: fmt.Errorf("downloading %s result: %w", f, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &PollError{Err: fmt.Errorf("downloading %s result: HTTP %d", f, resp.StatusCode)}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &PollError{Err: fmt.Errorf("reading %s result: %w", f, err)}
	}
	return content, nil
}

// readBodySnippet returns up to 512 bytes of a response body for error
// messages.
func readBodySnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(bytes.TrimSpace(b))
}
