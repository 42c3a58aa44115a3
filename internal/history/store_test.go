// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mathnotes/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)

	submitted := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	entry := Entry{
		RequestID:     "req-1",
		RemoteID:      "pdf-abc",
		PDFPath:       "/tmp/lecture.pdf",
		Formats:       []types.Format{types.FormatLaTeX, types.FormatMarkdown},
		Pages:         120,
		EstimatedCost: 3.00,
		Status:        types.StatusComplete,
		ManifestDir:   "processed_notes/20260210_090000",
		SubmittedAt:   submitted,
		FinishedAt:    submitted.Add(90 * time.Second),
	}
	require.NoError(t, s.Record(entry))

	entries, err := s.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "pdf-abc", got.RemoteID)
	assert.Equal(t, []types.Format{types.FormatLaTeX, types.FormatMarkdown}, got.Formats)
	assert.Equal(t, 120, got.Pages)
	assert.InDelta(t, 3.00, got.EstimatedCost, 1e-9)
	assert.Equal(t, types.StatusComplete, got.Status)
	assert.Equal(t, "processed_notes/20260210_090000", got.ManifestDir)
	assert.True(t, got.SubmittedAt.Equal(submitted))
}

func TestListMostRecentFirst(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"req-1", "req-2", "req-3"} {
		require.NoError(t, s.Record(Entry{
			RequestID: id,
			PDFPath:   "/tmp/lecture.pdf",
			Formats:   []types.Format{types.FormatMarkdown},
			Status:    types.StatusComplete,
		}))
	}

	entries, err := s.List(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "req-3", entries[0].RequestID)
	assert.Equal(t, "req-2", entries[1].RequestID)
}

func TestRecordFailedJob(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Record(Entry{
		RequestID:     "req-1",
		RemoteID:      "pdf-bad",
		PDFPath:       "/tmp/bad.pdf",
		Formats:       []types.Format{types.FormatHTML},
		Status:        types.StatusFailed,
		FailureReason: "unsupported file",
	}))

	entries, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.StatusFailed, entries[0].Status)
	assert.Equal(t, "unsupported file", entries[0].FailureReason)
	assert.Empty(t, entries[0].ManifestDir)
}

func TestListEmptyLedger(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
