package estimate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adamstosho/RugRadar/internal/evm"
	"github.com/adamstosho/RugRadar/internal/models"
)

var hundred = decimal.NewFromInt(100)

type ledgerEntry struct {
	balance      decimal.Decimal
	lastActivity time.Time
}

// ParseValue converts a raw integer amount into token units.
func ParseValue(raw string, decimals int32) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v.Shift(-decimals), true
}

// Holders replays a transfer sample as a ledger and ranks the resulting balances.
//
// Senders are debited and receivers credited, except for the zero address on
// either side. Addresses that end with a balance <= 0, or whose latest activity
// is older than p.RecencyWindow before now, are not holders. Shares are relative
// to the summed balance of the returned top holders, not to total supply.
func Holders(transfers []models.TransferRecord, decimals int32, now time.Time, p Parameters) models.HolderSample {
	ledger := make(map[string]*ledgerEntry)

	touch := func(addr string, ts time.Time) *ledgerEntry {
		e, ok := ledger[addr]
		if !ok {
			e = &ledgerEntry{}
			ledger[addr] = e
		}
		if ts.After(e.lastActivity) {
			e.lastActivity = ts
		}
		return e
	}

	for _, t := range transfers {
		value, ok := ParseValue(t.Value, decimals)
		if !ok || value.Sign() <= 0 {
			continue
		}
		if from, ok := evm.Normalize(t.From); ok && from != evm.ZeroAddress {
			e := touch(from, t.Timestamp)
			e.balance = e.balance.Sub(value)
		}
		if to, ok := evm.Normalize(t.To); ok && to != evm.ZeroAddress {
			e := touch(to, t.Timestamp)
			e.balance = e.balance.Add(value)
		}
	}

	sample := models.HolderSample{
		Top:       []models.HolderEstimate{},
		Addresses: len(ledger),
	}

	cutoff := now.Add(-p.RecencyWindow)
	eligible := make([]models.HolderEstimate, 0, len(ledger))
	balances := make(map[string]decimal.Decimal, len(ledger))

	for addr, e := range ledger {
		if e.balance.Sign() <= 0 {
			continue
		}
		sample.Positive++
		if e.lastActivity.Before(cutoff) {
			continue
		}
		balances[addr] = e.balance
		eligible = append(eligible, models.HolderEstimate{
			Address:      addr,
			Balance:      e.balance.String(),
			LastActivity: e.lastActivity,
		})
	}
	sample.Eligible = len(eligible)

	sort.Slice(eligible, func(i, j int) bool {
		c := balances[eligible[i].Address].Cmp(balances[eligible[j].Address])
		if c != 0 {
			return c > 0
		}
		return eligible[i].Address < eligible[j].Address
	})

	limit := p.HolderLimit
	if limit <= 0 || limit > len(eligible) {
		limit = len(eligible)
	}
	top := eligible[:limit]
	kept := decimal.Zero
	for _, h := range top {
		kept = kept.Add(balances[h.Address])
	}
	for i := range top {
		top[i].Share = share(balances[top[i].Address], kept)
	}
	sample.Top = top

	return sample
}

func share(balance, total decimal.Decimal) float64 {
	if total.Sign() <= 0 {
		return 0
	}
	return balance.Div(total).Mul(hundred).InexactFloat64()
}

// TopShares returns the share of the largest holder and the cumulative share of the first n.
func TopShares(holders []models.HolderEstimate, n int) (top1, topN float64) {
	if len(holders) == 0 {
		return 0, 0
	}
	top1 = holders[0].Share
	for i := 0; i < n && i < len(holders); i++ {
		topN += holders[i].Share
	}
	return top1, topN
}
