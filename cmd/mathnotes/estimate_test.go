package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args, capturing its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func stubPageCount(t *testing.T, pages int, err error) {
	t.Helper()
	orig := countPages
	countPages = func(string) (int, error) { return pages, err }
	t.Cleanup(func() { countPages = orig })
}

func TestEstimateCommandOutput(t *testing.T) {
	tests := []struct {
		name  string
		pages int
		want  string
	}{
		{"standard tier", 120, "lecture.pdf: 120 pages, standard tier, estimated $3.00\n"},
		{"volume tier", 50000, "lecture.pdf: 50000 pages, volume tier, estimated $1100.00\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubPageCount(t, tt.pages, nil)

			out, err := runCommand(t, "estimate", "lecture.pdf")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEstimateCommandProbeFailure(t *testing.T) {
	probeErr := errors.New("not a pdf")
	stubPageCount(t, 0, probeErr)

	_, err := runCommand(t, "estimate", "bogus.pdf")
	assert.ErrorIs(t, err, probeErr)
}
