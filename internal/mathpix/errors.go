// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathpix

import (
	"fmt"
	"time"
)

// SubmissionError means the document never made it to the conversion
// service: unreadable input, rejected credentials, or a transport
// failure at submit time.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "submission failed: " + e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError means a status check or result download failed on the wire
// or returned a response the client could not interpret. It says
// nothing about the fate of the remote job.
type PollError struct {
	Err error
}

func (e *PollError) Error() string { return "polling failed: " + e.Err.Error() }
func (e *PollError) Unwrap() error { return e.Err }

// TimeoutError means the job was still non-terminal when the maximum
// wait elapsed. The job may well still be processing remotely; the
// caller must not treat this as a cancellation.
type TimeoutError struct {
	RemoteID string
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s still not finished after %s", e.RemoteID, e.Elapsed)
}

// RemoteFailure means the service itself reported the job as failed,
// carrying the service-supplied reason verbatim.
type RemoteFailure struct {
	RemoteID string
	Reason   string
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("conversion of job %s failed remotely: %s", e.RemoteID, e.Reason)
}
