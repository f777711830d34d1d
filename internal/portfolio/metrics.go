package portfolio

import (
	"sort"

	"github.com/mfeld/cointrack-backend/internal/models"
)

// PriceLookup returns the current USD price for an asset. ok=false (or a
// non-positive price) means no quote is available; ComputeMetrics then
// values the position at its own cost basis instead of erroring.
type PriceLookup func(asset string) (price float64, ok bool)

// NoPrices is a PriceLookup that never has a quote. Useful for tests and
// for pure cash/quantity computations where valuation does not matter.
func NoPrices(string) (float64, bool) { return 0, false }

// ComputeMetrics turns a trade set into the full per-asset and aggregate
// valuation snapshot. It is the single source of truth for valuation:
// the dashboard, per-account breakdowns, projections, and balance checks
// all consume its output rather than re-deriving any number.
//
// It is a pure function of (trades, method, prices): no I/O, no cached
// state, safe for concurrent calls as long as callers do not mutate the
// trade slice mid-call. Malformed trades degrade to zero-valued fields
// rather than failing, since the projection engine feeds it synthetic data.
func ComputeMetrics(trades []models.Trade, method Method, prices PriceLookup) models.PortfolioMetrics {
	m := models.PortfolioMetrics{PerAsset: map[string]models.AssetMetrics{}}
	if len(trades) == 0 {
		return m
	}
	if prices == nil {
		prices = NoPrices
	}
	method = ParseMethod(string(method))
	sorted := sortedByDate(trades)

	// Net fiat the user put in: deposits minus withdrawals.
	for _, t := range sorted {
		if !t.IsFiat() {
			continue
		}
		switch t.Type {
		case models.TypeDeposit:
			m.TotalExternalCash += t.Quantity
		case models.TypeWithdrawal:
			m.TotalExternalCash -= t.Quantity
		}
	}

	for _, asset := range cryptoAssets(sorted) {
		costBasisAsset, unitsHeld, _ := costBasis(sorted, asset, method)
		if costBasisAsset < 0 {
			// Float drift from partial lot consumption can leave a tiny
			// negative residue; a real negative basis has no meaning.
			costBasisAsset = 0
		}

		var buyCost, sellProceeds, holdingQty float64
		for _, t := range sorted {
			if t.Asset != asset {
				continue
			}
			switch t.Type {
			case models.TypeBuy, models.TypeTransfer:
				buyCost += t.TotalValue + t.Fee
			case models.TypeSell:
				sellProceeds += t.TotalValue - t.Fee
			case models.TypeHolding:
				holdingQty += t.Quantity
			}
		}
		// Realized P&L = proceeds minus the cost that left the basis pool.
		realized := sellProceeds - (buyCost - costBasisAsset)

		totalUnits := unitsHeld + holdingQty

		var currentValue float64
		var quoted *float64
		if price, ok := prices(asset); ok && price > 0 {
			p := price
			quoted = &p
			currentValue = totalUnits * price
		} else {
			// No quote: value the position at what was paid for it.
			currentValue = costBasisAsset
		}

		unrealized := currentValue - costBasisAsset
		var roiPct float64
		if costBasisAsset > 0 {
			roiPct = unrealized / costBasisAsset * 100
		}

		m.PerAsset[asset] = models.AssetMetrics{
			UnitsHeld:     unitsHeld,
			HoldingQty:    holdingQty,
			Price:         quoted,
			CurrentValue:  currentValue,
			CostBasis:     costBasisAsset,
			UnrealizedPnL: unrealized,
			RealizedPnL:   realized,
			LifetimePnL:   realized + unrealized,
			ROIPct:        roiPct,
		}
		m.TotalCostBasis += costBasisAsset
		m.UnrealizedPnL += unrealized
		m.TotalValue += currentValue
	}
	totalValueAssets := m.TotalValue

	// USD cash: external cash plus crypto sale proceeds minus crypto buys.
	m.USDBalance = m.TotalExternalCash
	for _, t := range sorted {
		if t.IsFiat() {
			continue
		}
		totalVal := t.TotalValue
		if totalVal == 0 {
			totalVal = t.Price * t.Quantity
		}
		switch t.Type {
		case models.TypeBuy:
			m.USDBalance -= totalVal + t.Fee
		case models.TypeSell:
			m.USDBalance += totalVal - t.Fee
		}
	}
	m.TotalValue = totalValueAssets + m.USDBalance

	// Aggregate realized P&L is recomputed from the totals rather than
	// summed per asset, so the headline number cannot drift from its own
	// decomposition under a different summation order.
	var totalBuyCost, totalSellProceeds float64
	for _, t := range sorted {
		if t.IsFiat() {
			continue
		}
		switch t.Type {
		case models.TypeBuy, models.TypeTransfer:
			totalBuyCost += t.TotalValue + t.Fee
		case models.TypeSell:
			totalSellProceeds += t.TotalValue - t.Fee
		}
	}
	m.RealizedPnL = totalSellProceeds - (totalBuyCost - m.TotalCostBasis)
	m.TotalPnL = m.RealizedPnL + m.UnrealizedPnL

	if m.TotalExternalCash > 0 {
		m.ROIPct = m.TotalPnL / m.TotalExternalCash * 100
	}
	if m.TotalCostBasis > 0 {
		roc := m.TotalPnL / m.TotalCostBasis * 100
		m.ROIOnCostPct = &roc
	}
	return m
}

// cryptoAssets returns the distinct non-USD symbols, sorted for stable
// iteration order.
func cryptoAssets(trades []models.Trade) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range trades {
		if t.IsFiat() || t.Asset == "" || seen[t.Asset] {
			continue
		}
		seen[t.Asset] = true
		out = append(out, t.Asset)
	}
	sort.Strings(out)
	return out
}
