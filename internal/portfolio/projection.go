package portfolio

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfeld/cointrack-backend/internal/models"
)

// Outcome is the headline result of a what-if run. Cost is the net fiat in
// (external cash), Value the projected portfolio value, both taken from the
// combined real+synthetic snapshot.
type Outcome struct {
	TotalPnL float64                 `json:"totalPnl"`
	Cost     float64                 `json:"cost"`
	Value    float64                 `json:"value"`
	Metrics  models.PortfolioMetrics `json:"metrics"`
}

// Project runs the valuation pipeline over the real ledger plus the given
// hypothetical rows. Rows are synthesized into full trades with fresh ids
// and strictly increasing timestamps one second apart, placed after the
// latest real trade, so row N sees the effect of rows 1..N-1 (buy then sell
// part of that buy works as expected).
//
// The real trade slice is never modified; synthetic trades exist only for
// the duration of the call and are never persisted.
func Project(real []models.Trade, rows []models.ProjectionRow, method Method, prices PriceLookup) Outcome {
	combined := make([]models.Trade, len(real), len(real)+len(rows))
	copy(combined, real)

	base := time.Now()
	for _, t := range real {
		if t.Date.After(base) {
			base = t.Date
		}
	}

	n := 0
	for _, row := range rows {
		if row.Price <= 0 || row.Quantity <= 0 {
			continue
		}
		n++
		combined = append(combined, models.Trade{
			ID:         uuid.NewString(),
			Date:       base.Add(time.Duration(n) * time.Second),
			Asset:      row.Asset,
			Type:       row.Type,
			Price:      row.Price,
			Quantity:   row.Quantity,
			TotalValue: row.Price * row.Quantity,
			AccountID:  row.AccountID,
		})
	}

	m := ComputeMetrics(combined, method, prices)
	return Outcome{
		TotalPnL: m.TotalPnL,
		Cost:     m.TotalExternalCash,
		Value:    m.TotalValue,
		Metrics:  m,
	}
}
