// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite ledger of conversion runs so
// past jobs, their cost estimates, and their output locations can be
// listed later.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/mathnotes/pkg/types"
)

// Store manages the job ledger database.
type Store struct {
	db *sql.DB
}

// Entry is one recorded conversion run.
type Entry struct {
	RequestID     string
	RemoteID      string
	PDFPath       string
	Formats       []types.Format
	Pages         int
	EstimatedCost float64
	Status        types.JobStatus
	FailureReason string
	ManifestDir   string
	SubmittedAt   time.Time
	FinishedAt    time.Time
}

// NewStore opens or creates the ledger database at path, creating the
// parent directory and schema as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS jobs (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		remote_id TEXT,
		pdf_path TEXT NOT NULL,
		formats TEXT NOT NULL,
		pages INTEGER,
		estimated_cost REAL,
		status TEXT NOT NULL,
		failure_reason TEXT,
		manifest_dir TEXT,
		submitted_at TEXT,
		finished_at TEXT
	)`)
	return err
}

// Record appends one finished run to the ledger.
func (s *Store) Record(e Entry) error {
	formats := make([]string, len(e.Formats))
	for i, f := range e.Formats {
		formats[i] = string(f)
	}

	_, err := s.db.Exec(
		`INSERT INTO jobs (request_id, remote_id, pdf_path, formats, pages,
			estimated_cost, status, failure_reason, manifest_dir, submitted_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.RemoteID, e.PDFPath, strings.Join(formats, ","), e.Pages,
		e.EstimatedCost, string(e.Status), e.FailureReason, e.ManifestDir,
		formatTime(e.SubmittedAt), formatTime(e.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("recording job %s: %w", e.RequestID, err)
	}
	return nil
}

// List returns up to limit entries, most recent first. A non-positive
// limit defaults to 20.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT request_id, remote_id, pdf_path, formats, pages, estimated_cost,
			status, failure_reason, manifest_dir, submitted_at, finished_at
		 FROM jobs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var formats, submitted, finished string
		if err := rows.Scan(&e.RequestID, &e.RemoteID, &e.PDFPath, &formats, &e.Pages,
			&e.EstimatedCost, &e.Status, &e.FailureReason, &e.ManifestDir,
			&submitted, &finished); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		for _, f := range strings.Split(formats, ",") {
			if f != "" {
				e.Formats = append(e.Formats, types.Format(f))
			}
		}
		e.SubmittedAt = parseTime(submitted)
		e.FinishedAt = parseTime(finished)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
