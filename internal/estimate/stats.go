package estimate

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adamstosho/RugRadar/internal/models"
)

// Input bundles what Stats needs from one analysis.
type Input struct {
	Page     *models.TransferPage
	Holders  models.HolderSample
	Decimals int32
	// Price may be nil when no quote could be obtained.
	Price *models.TokenPrice
	Now   time.Time
}

// Stats derives the aggregate figures of a token from its transfer sample.
func Stats(in Input, p Parameters) models.TokenStats {
	transfers := Transfers(in.Page, p)
	stats := models.TokenStats{
		TotalTransfers: transfers,
		TotalHolders:   HolderCount(in.Page, in.Holders, transfers, p),
		PriceChange24h: models.Unavailable(),
		Liquidity:      models.Unavailable(),
		Volume24h:      models.Unavailable(),
	}

	tokens, count := Volume(in.Page, in.Decimals, in.Now, p.VolumeWindow)
	stats.Transfers24h = count
	if in.Page == nil || len(in.Page.Transfers) == 0 {
		stats.Volume24hTokens = models.Unavailable()
	} else {
		stats.Volume24hTokens = models.Estimated(tokens.InexactFloat64())
		if in.Price != nil && in.Price.USDPrice > 0 {
			usd := tokens.Mul(decimal.NewFromFloat(in.Price.USDPrice))
			stats.Volume24h = models.Estimated(usd.InexactFloat64())
		}
	}

	if in.Price != nil && in.Price.HasChange24h {
		if in.Price.Fallback {
			stats.PriceChange24h = models.Estimated(in.Price.PriceChange24h)
		} else {
			stats.PriceChange24h = models.Vendor(in.Price.PriceChange24h)
		}
	}

	return stats
}

// Transfers applies the transfer count policy:
//   - vendor total within the page cap: exact
//   - vendor total above the page cap: vendor value, flagged estimated
//   - no total and a short page: the page is the whole history, exact
//   - no total and a full page: max(sample*TransferMultiplier, TransferFloor), estimated
//   - empty sample: unavailable
func Transfers(page *models.TransferPage, p Parameters) models.Metric {
	if page == nil {
		return models.Unavailable()
	}
	if page.Total != nil && *page.Total > 0 {
		if *page.Total <= int64(p.PageSize) {
			return models.Vendor(float64(*page.Total))
		}
		return models.Estimated(float64(*page.Total))
	}

	n := len(page.Transfers)
	if n == 0 {
		return models.Unavailable()
	}
	if !page.Full() {
		return models.Vendor(float64(n))
	}
	est := math.Max(math.Floor(float64(n)*p.TransferMultiplier), float64(p.TransferFloor))
	return models.Estimated(est)
}

// HolderCount scales the eligible holders of the sample (positive balance and
// recent activity) by the ratio of estimated transfers to sampled transfers. Always an estimate.
func HolderCount(page *models.TransferPage, sample models.HolderSample, transfers models.Metric, p Parameters) models.Metric {
	if page == nil || len(page.Transfers) == 0 {
		return models.Unavailable()
	}
	count := float64(sample.Eligible)
	n := float64(len(page.Transfers))
	if transfers.Available() && transfers.Value > n {
		count = math.Floor(count * transfers.Value / n)
	}
	if count > float64(p.MaxHolderEstimate) {
		count = float64(p.MaxHolderEstimate)
	}
	return models.Estimated(count)
}

// Volume sums, in token units, the transfers that happened within window before now.
func Volume(page *models.TransferPage, decimals int32, now time.Time, window time.Duration) (decimal.Decimal, int) {
	total := decimal.Zero
	if page == nil {
		return total, 0
	}
	cutoff := now.Add(-window)
	count := 0
	for _, t := range page.Transfers {
		if t.Timestamp.IsZero() || !t.Timestamp.After(cutoff) {
			continue
		}
		v, ok := ParseValue(t.Value, decimals)
		if !ok {
			continue
		}
		total = total.Add(v)
		count++
	}
	return total, count
}
