package portfolio

import "github.com/mfeld/cointrack-backend/internal/models"

// AvailableQuantity returns how much of an asset could be sold or withdrawn
// right now, clamped at zero.
//
// USD uses the canonical cash balance from ComputeMetrics. Crypto is
// BUY + Transfer - SELL - Holding: units parked in Holding entries are
// locked away from the sellable pool even though they still count toward
// portfolio value.
func AvailableQuantity(trades []models.Trade, asset string, method Method) float64 {
	if asset == models.USDAsset {
		m := ComputeMetrics(trades, method, NoPrices)
		if m.USDBalance < 0 {
			return 0
		}
		return m.USDBalance
	}

	var qty float64
	for _, t := range trades {
		if t.Asset != asset {
			continue
		}
		switch t.Type {
		case models.TypeBuy, models.TypeTransfer:
			qty += t.Quantity
		case models.TypeSell, models.TypeHolding:
			qty -= t.Quantity
		}
	}
	if qty < 0 {
		return 0
	}
	return qty
}

// HoldingQuantity returns the total units parked in Holding entries for the
// asset (included in valuation, excluded from the sellable pool).
func HoldingQuantity(trades []models.Trade, asset string) float64 {
	var qty float64
	for _, t := range trades {
		if t.Asset == asset && t.Type == models.TypeHolding {
			qty += t.Quantity
		}
	}
	return qty
}
