package portfolio

import (
	"sort"

	"github.com/mfeld/cointrack-backend/internal/models"
)

// costBasis replays one asset's trade history under the given method and
// returns (total cost basis, units held, remaining lots). The input may
// contain any assets and types; it is filtered and stably sorted by date
// here, so callers never need to pre-sort.
//
// These replay functions are deliberately unexported: ComputeMetrics is the
// only valuation entry point, which keeps every surface (API, projections,
// validation) consistent with a single set of numbers.
func costBasis(trades []models.Trade, asset string, method Method) (float64, float64, []models.Lot) {
	switch ParseMethod(string(method)) {
	case FIFO:
		return costBasisLots(trades, asset, true)
	case LIFO:
		return costBasisLots(trades, asset, false)
	default:
		return costBasisAverage(trades, asset)
	}
}

// costBasisLots implements FIFO (oldestFirst) and LIFO (!oldestFirst): an
// explicit ordered lot list, consumed from the front or the back on sells.
func costBasisLots(trades []models.Trade, asset string, oldestFirst bool) (float64, float64, []models.Lot) {
	assetTrades := filterSortedByDate(trades, asset)

	var lots []models.Lot
	var totalCost, unitsHeld float64

	for _, t := range assetTrades {
		switch t.Type {
		case models.TypeBuy, models.TypeTransfer:
			qty := t.Quantity
			totalVal := t.TotalValue + t.Fee
			var costPerUnit float64
			if qty != 0 {
				costPerUnit = totalVal / qty
			}
			if costPerUnit > 0 && qty > 0 {
				lots = append(lots, models.Lot{
					Quantity:    qty,
					CostPerUnit: costPerUnit,
					TradeID:     t.ID,
					Date:        t.Date,
				})
				unitsHeld += qty
				totalCost += totalVal
			}
		case models.TypeSell:
			sellQty := t.Quantity
			// Track past zero: selling more than was bought is tolerated,
			// not rejected (validation happens at the append boundary).
			unitsHeld -= sellQty
			for sellQty > 0 && len(lots) > 0 {
				i := 0
				if !oldestFirst {
					i = len(lots) - 1
				}
				lot := lots[i]
				if lot.Quantity <= sellQty {
					totalCost -= lot.Quantity * lot.CostPerUnit
					sellQty -= lot.Quantity
					lots = append(lots[:i], lots[i+1:]...)
				} else {
					totalCost -= sellQty * lot.CostPerUnit
					lots[i].Quantity -= sellQty
					sellQty = 0
				}
			}
		}
	}
	return totalCost, unitsHeld, lots
}

// costBasisAverage blends every acquisition into one running average cost.
// No lot list is kept during the replay; a single synthetic lot is returned
// so callers see the same shape as FIFO/LIFO.
func costBasisAverage(trades []models.Trade, asset string) (float64, float64, []models.Lot) {
	assetTrades := filterSortedByDate(trades, asset)

	var totalCost, unitsHeld float64
	for _, t := range assetTrades {
		switch t.Type {
		case models.TypeBuy, models.TypeTransfer:
			unitsHeld += t.Quantity
			totalCost += t.TotalValue + t.Fee
		case models.TypeSell:
			sellQty := t.Quantity
			unitsHeld -= sellQty
			if unitsHeld > 0 {
				avg := totalCost / (unitsHeld + sellQty)
				totalCost = unitsHeld * avg
			} else {
				totalCost = 0
			}
		}
	}

	var lots []models.Lot
	if unitsHeld > 0 {
		lots = append(lots, models.Lot{
			Quantity:    unitsHeld,
			CostPerUnit: totalCost / unitsHeld,
			TradeID:     "average",
		})
	}
	return totalCost, unitsHeld, lots
}

// filterSortedByDate returns the asset's trades in chronological order.
// The sort is stable so same-second trades keep their insertion order, and
// the input slice is never touched.
func filterSortedByDate(trades []models.Trade, asset string) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Asset == asset {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// sortedByDate returns a chronologically ordered copy of all trades.
func sortedByDate(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
