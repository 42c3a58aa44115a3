// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagecount probes local PDF files for their page count, used
// to estimate conversion cost before submission.
package pagecount

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Pages returns the number of pages in the PDF at path.
func Pages(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n := r.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("no pages found in %s", path)
	}
	return n, nil
}
