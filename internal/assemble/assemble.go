// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble writes completed conversion results to disk, one
// file per requested format under a timestamp-named directory.
package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mathnotes/pkg/types"
)

// baseName is the stem shared by every output file in a manifest
// directory (notes.tex, notes.md, notes.html).
const baseName = "notes"

// manifestFile records what was written alongside the outputs.
const manifestFile = "manifest.yaml"

// WriteError indicates a local filesystem failure during assembly.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("writing %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// manifestDoc is the YAML document written next to the output files.
type manifestDoc struct {
	RequestID string   `yaml:"request_id,omitempty"`
	RemoteID  string   `yaml:"remote_id,omitempty"`
	SourcePDF string   `yaml:"source_pdf"`
	Timestamp string   `yaml:"timestamp"`
	Files     []string `yaml:"files"`
}

// Assemble writes one file per format present in result into
// <outputRoot>/<timestamp>/, plus a manifest.yaml describing the run.
// The directory is created if needed; rewriting the same timestamp with
// the same content is deterministic, and a fresh timestamp never
// touches a prior run's directory. Failures surface as *WriteError.
// Files written before a later failure are not rolled back.
func Assemble(result types.ConversionResult, outputRoot, timestamp string, job *types.ConversionJob) (*types.OutputManifest, error) {
	dir := filepath.Join(outputRoot, timestamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &WriteError{Path: dir, Err: err}
	}

	manifest := &types.OutputManifest{
		Dir:   dir,
		Files: make(map[types.Format]string, len(result)),
	}

	doc := manifestDoc{
		SourcePDF: job.PDFPath,
		RequestID: job.RequestID,
		RemoteID:  job.RemoteID,
		Timestamp: timestamp,
	}

	// Canonical format order keeps directory listings and the manifest
	// stable across runs.
	for _, f := range types.AllFormats {
		content, ok := result[f]
		if !ok {
			continue
		}
		path := filepath.Join(dir, baseName+f.Extension())
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, &WriteError{Path: path, Err: err}
		}
		manifest.Files[f] = path
		doc.Files = append(doc.Files, filepath.Base(path))
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, &WriteError{Path: filepath.Join(dir, manifestFile), Err: err}
	}
	manifestPath := filepath.Join(dir, manifestFile)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return nil, &WriteError{Path: manifestPath, Err: err}
	}

	return manifest, nil
}
