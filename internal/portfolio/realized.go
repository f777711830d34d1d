package portfolio

import "github.com/mfeld/cointrack-backend/internal/models"

// RealizedBySale attributes a realized P&L to each individual SELL trade,
// replaying the history with a running average-cost basis per asset.
// The returned map only has entries for SELL trades.
//
// Attribution is average-cost only. Under FIFO/LIFO the per-sale split
// would need lot-level matching; the aggregate realized figure from
// ComputeMetrics stays correct for every method, so this map is a display
// breakdown, not an input to the portfolio totals.
func RealizedBySale(trades []models.Trade) map[string]float64 {
	sorted := sortedByDate(trades)

	units := map[string]float64{}
	basis := map[string]float64{}
	result := map[string]float64{}

	for _, t := range sorted {
		if t.IsFiat() {
			continue
		}
		switch t.Type {
		case models.TypeBuy, models.TypeTransfer:
			units[t.Asset] += t.Quantity
			basis[t.Asset] += t.TotalValue + t.Fee
		case models.TypeSell:
			if t.ID == "" {
				continue
			}
			u := units[t.Asset]
			if u <= 0 {
				// Sold with no tracked basis: nothing to attribute.
				result[t.ID] = 0
				continue
			}
			sold := t.Quantity
			if sold > u {
				sold = u
			}
			costPerUnit := basis[t.Asset] / u
			costOfSold := costPerUnit * sold
			result[t.ID] = t.Price*sold - costOfSold - t.Fee
			units[t.Asset] = u - sold
			basis[t.Asset] -= costOfSold
		}
	}
	return result
}

// BuyProfitByTrade computes, for each BUY that follows at least one SELL of
// the same asset, the price-differential profit
// (last sell price - buy price) * quantity. This is an informational
// "bought back cheaper" figure for display; it is not part of realized or
// unrealized P&L.
func BuyProfitByTrade(trades []models.Trade) map[string]float64 {
	sorted := sortedByDate(trades)

	lastSellPrice := map[string]float64{}
	result := map[string]float64{}

	for _, t := range sorted {
		if t.IsFiat() {
			continue
		}
		switch t.Type {
		case models.TypeSell:
			if t.Price > 0 {
				lastSellPrice[t.Asset] = t.Price
			}
		case models.TypeBuy:
			sell, ok := lastSellPrice[t.Asset]
			if ok && t.Price > 0 && t.Quantity > 0 && t.ID != "" {
				result[t.ID] = (sell - t.Price) * t.Quantity
			}
		}
	}
	return result
}
