package portfolio

import "github.com/mfeld/cointrack-backend/internal/models"

// ChangeLookup returns the 24h percent change for an asset, ok=false when
// unknown.
type ChangeLookup func(asset string) (pct float64, ok bool)

// Change24hUSD estimates the portfolio's USD move over the last 24 hours
// from per-asset current values and 24h percent changes:
// value_24h_ago = value / (1 + pct/100), so the delta per asset is
// value * pct / (100 + pct). Assets without a change figure are skipped.
//
// This is a display aggregate only; it has no bearing on P&L correctness.
// ok=false means no asset had a usable change figure.
func Change24hUSD(perAsset map[string]models.AssetMetrics, changes ChangeLookup) (float64, bool) {
	if changes == nil {
		return 0, false
	}
	var total float64
	for asset, a := range perAsset {
		pct, ok := changes(asset)
		if !ok || a.CurrentValue <= 0 {
			continue
		}
		total += a.CurrentValue * (pct / (100 + pct))
	}
	return total, total != 0
}
