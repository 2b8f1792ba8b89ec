// Package estimate derives holder and aggregate figures from a bounded transfer sample.
//
// The vendor exposes neither true holder counts nor transfer totals past its page cap,
// so every figure here is a best-effort estimate tagged with its provenance.
package estimate

import (
	"fmt"
	"time"
)

const (
	DefaultPageSize           = 100
	DefaultHolderLimit        = 10
	DefaultRecencyWindow      = 30 * 24 * time.Hour
	DefaultVolumeWindow       = 24 * time.Hour
	DefaultTransferMultiplier = 5.0
	DefaultTransferFloor      = 500
	DefaultMaxHolderEstimate  = 1_000_000
)

// Parameters are the policy constants of the estimation heuristics.
type Parameters struct {
	// PageSize is the number of transfers requested per analysis, capped by the vendor at 100.
	PageSize int
	// HolderLimit is K, the number of ranked holders returned.
	HolderLimit int
	// RecencyWindow drops addresses whose last activity is older than this.
	RecencyWindow time.Duration
	// VolumeWindow is the trailing window summed into the volume figure.
	VolumeWindow time.Duration
	// TransferMultiplier and TransferFloor extrapolate a full page with no vendor total:
	// max(sample*TransferMultiplier, TransferFloor).
	TransferMultiplier float64
	TransferFloor      int64
	// MaxHolderEstimate caps the extrapolated holder count.
	MaxHolderEstimate int64
}

func DefaultParameters() Parameters {
	return Parameters{
		PageSize:           DefaultPageSize,
		HolderLimit:        DefaultHolderLimit,
		RecencyWindow:      DefaultRecencyWindow,
		VolumeWindow:       DefaultVolumeWindow,
		TransferMultiplier: DefaultTransferMultiplier,
		TransferFloor:      DefaultTransferFloor,
		MaxHolderEstimate:  DefaultMaxHolderEstimate,
	}
}

// Validate checks the parameters are usable.
func (p Parameters) Validate() error {
	switch {
	case p.PageSize <= 0 || p.PageSize > DefaultPageSize:
		return fmt.Errorf("page size must be within 1..%d, got %d", DefaultPageSize, p.PageSize)
	case p.HolderLimit <= 0:
		return fmt.Errorf("holder limit must be positive, got %d", p.HolderLimit)
	case p.RecencyWindow <= 0:
		return fmt.Errorf("recency window must be positive, got %s", p.RecencyWindow)
	case p.VolumeWindow <= 0:
		return fmt.Errorf("volume window must be positive, got %s", p.VolumeWindow)
	case p.TransferMultiplier < 1:
		return fmt.Errorf("transfer multiplier must be at least 1, got %g", p.TransferMultiplier)
	case p.TransferFloor < 0:
		return fmt.Errorf("transfer floor must not be negative, got %d", p.TransferFloor)
	case p.MaxHolderEstimate <= 0:
		return fmt.Errorf("max holder estimate must be positive, got %d", p.MaxHolderEstimate)
	}
	return nil
}
