// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pricing computes conversion cost estimates from page counts.
package pricing

import (
	"fmt"

	"github.com/pdiddy/mathnotes/pkg/types"
)

const (
	// TierThreshold is the page count at which the volume rate starts.
	TierThreshold = 40000

	// StandardRate is the per-page price for pages 1..TierThreshold.
	StandardRate = 0.025

	// VolumeRate is the per-page price for every page past TierThreshold.
	VolumeRate = 0.01
)

// Tier names reported in estimates.
const (
	TierStandard = "standard"
	TierVolume   = "volume"
)

// Estimate prices pageCount pages under the two-tier marginal schedule:
// the standard rate applies to the first TierThreshold pages, the volume
// rate to any pages beyond. A zero page count estimates to zero; a
// negative page count is an error.
func Estimate(pageCount int) (types.CostEstimate, error) {
	if pageCount < 0 {
		return types.CostEstimate{}, fmt.Errorf("page count must be non-negative, got %d", pageCount)
	}

	est := types.CostEstimate{Pages: pageCount, Tier: TierStandard}
	if pageCount <= TierThreshold {
		est.Amount = float64(pageCount) * StandardRate
		return est, nil
	}

	est.Tier = TierVolume
	est.Amount = TierThreshold*StandardRate + float64(pageCount-TierThreshold)*VolumeRate
	return est, nil
}
