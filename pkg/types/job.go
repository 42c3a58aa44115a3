package types

import (
	"fmt"
	"strings"
	"time"
)

// Format identifies one output format the conversion service can produce.
type Format string

const (
	FormatLaTeX    Format = "latex"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// AllFormats lists every supported output format in canonical order.
var AllFormats = []Format{FormatLaTeX, FormatMarkdown, FormatHTML}

// Extension returns the canonical file extension for the format,
// including the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatLaTeX:
		return ".tex"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	}
	return ""
}

// ParseFormats converts a list of format names into Formats, rejecting
// unknown names and duplicates.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool)
	var formats []Format
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		switch f {
		case FormatLaTeX, FormatMarkdown, FormatHTML:
		default:
			return nil, fmt.Errorf("unknown format %q (supported: latex, markdown, html)", name)
		}
		if seen[f] {
			return nil, fmt.Errorf("duplicate format %q", name)
		}
		seen[f] = true
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("at least one output format is required")
	}
	return formats, nil
}

// JobStatus is the lifecycle state of a conversion job. A job moves
// strictly forward: pending, processing, then exactly one of complete,
// failed, or timed_out.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusFailed     JobStatus = "failed"
	StatusTimedOut   JobStatus = "timed_out"
)

// Terminal reports whether no further status changes can occur.
func (s JobStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed || s == StatusTimedOut
}

// ConversionJob tracks one submitted document through the remote
// conversion service.
type ConversionJob struct {
	// PDFPath is the local source document.
	PDFPath string

	// RemoteID is the identifier assigned by the service at submission.
	RemoteID string

	// RequestID is a client-generated identifier attached to the
	// submission for correlation.
	RequestID string

	// Formats are the output formats requested at submission.
	Formats []Format

	SubmittedAt time.Time
	Status      JobStatus

	// FailureReason holds the service-supplied reason when Status is
	// StatusFailed.
	FailureReason string

	// Progress counters from the most recent status response.
	PercentDone float64
	PagesDone   int
	PagesTotal  int
}

// ConversionResult maps each requested format to its raw content once
// a job completes.
type ConversionResult map[Format][]byte

// OutputManifest records the files written for one completed job.
type OutputManifest struct {
	// Dir is the timestamp-named directory holding the output files.
	Dir string

	// Files maps each format to the path of its written file.
	Files map[Format]string
}

// CostEstimate is the price estimate for converting a document.
type CostEstimate struct {
	Pages  int
	Tier   string
	Amount float64
}

// Credentials authenticate against the conversion service.
type Credentials struct {
	AppID  string
	AppKey string
}
