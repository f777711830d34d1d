package portfolio

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeld/cointrack-backend/internal/models"
)

var allMethods = []Method{FIFO, LIFO, Average}

func ts(i int) time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
}

func tr(i int, asset, typ string, price, qty, fee float64) models.Trade {
	return models.Trade{
		ID:         fmt.Sprintf("t-%d", i),
		Date:       ts(i),
		Asset:      asset,
		Type:       typ,
		Price:      price,
		Quantity:   qty,
		Fee:        fee,
		TotalValue: price * qty,
	}
}

func fiat(i int, typ string, amount float64) models.Trade {
	return models.Trade{
		ID:         fmt.Sprintf("t-%d", i),
		Date:       ts(i),
		Asset:      models.USDAsset,
		Type:       typ,
		Quantity:   amount,
		TotalValue: amount,
	}
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, FIFO, ParseMethod("fifo"))
	assert.Equal(t, LIFO, ParseMethod("LIFO"))
	assert.Equal(t, Average, ParseMethod("average"))
	assert.Equal(t, Average, ParseMethod(""))
	assert.Equal(t, Average, ParseMethod("hifo"))
}

func TestCostBasisSingleBuy(t *testing.T) {
	trades := []models.Trade{tr(1, "BTC", models.TypeBuy, 40000, 1, 40)}

	for _, m := range allMethods {
		cost, units, lots := costBasis(trades, "BTC", m)
		assert.InDelta(t, 40040, cost, 1e-9, "method %s", m)
		assert.InDelta(t, 1, units, 1e-9, "method %s", m)
		require.Len(t, lots, 1, "method %s", m)
		assert.InDelta(t, 40040, lots[0].Quantity*lots[0].CostPerUnit, 1e-9)
	}
}

func TestCostBasisMethodsAgreeOnSimpleHistory(t *testing.T) {
	// One buy, one smaller sell. The methods only diverge with multiple
	// lots at different unit costs.
	trades := []models.Trade{
		tr(1, "ETH", models.TypeBuy, 2000, 2, 0),
		tr(2, "ETH", models.TypeSell, 3000, 1, 0),
	}

	for _, m := range allMethods {
		cost, units, _ := costBasis(trades, "ETH", m)
		assert.InDelta(t, 2000, cost, 1e-9, "method %s", m)
		assert.InDelta(t, 1, units, 1e-9, "method %s", m)
	}
}

func TestCostBasisFIFOConsumesOldestLot(t *testing.T) {
	trades := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 1, 0),
		tr(2, "BTC", models.TypeBuy, 20000, 1, 0),
		tr(3, "BTC", models.TypeSell, 25000, 1, 0),
	}

	cost, units, lots := costBasis(trades, "BTC", FIFO)
	assert.InDelta(t, 20000, cost, 1e-9)
	assert.InDelta(t, 1, units, 1e-9)
	require.Len(t, lots, 1)
	assert.Equal(t, "t-2", lots[0].TradeID)
}

func TestCostBasisLIFOConsumesNewestLot(t *testing.T) {
	trades := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 1, 0),
		tr(2, "BTC", models.TypeBuy, 20000, 1, 0),
		tr(3, "BTC", models.TypeSell, 25000, 1, 0),
	}

	cost, units, lots := costBasis(trades, "BTC", LIFO)
	assert.InDelta(t, 10000, cost, 1e-9)
	assert.InDelta(t, 1, units, 1e-9)
	require.Len(t, lots, 1)
	assert.Equal(t, "t-1", lots[0].TradeID)
}

func TestCostBasisAverageBlendsLots(t *testing.T) {
	trades := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 1, 0),
		tr(2, "BTC", models.TypeBuy, 20000, 1, 0),
		tr(3, "BTC", models.TypeSell, 25000, 1, 0),
	}

	cost, units, lots := costBasis(trades, "BTC", Average)
	assert.InDelta(t, 15000, cost, 1e-9)
	assert.InDelta(t, 1, units, 1e-9)
	require.Len(t, lots, 1)
	assert.Equal(t, "average", lots[0].TradeID)
	assert.InDelta(t, 15000, lots[0].CostPerUnit, 1e-9)
}

func TestCostBasisPartialLotConsumption(t *testing.T) {
	trades := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 2, 0),
		tr(2, "BTC", models.TypeSell, 12000, 0.5, 0),
	}

	cost, units, lots := costBasis(trades, "BTC", FIFO)
	assert.InDelta(t, 15000, cost, 1e-9)
	assert.InDelta(t, 1.5, units, 1e-9)
	require.Len(t, lots, 1)
	assert.InDelta(t, 1.5, lots[0].Quantity, 1e-9)
	assert.InDelta(t, 10000, lots[0].CostPerUnit, 1e-9)
}

func TestCostBasisUnitsConservation(t *testing.T) {
	trades := []models.Trade{
		tr(1, "SOL", models.TypeBuy, 100, 3, 0),
		tr(2, "SOL", models.TypeSell, 110, 3, 0),
	}

	for _, m := range allMethods {
		cost, units, lots := costBasis(trades, "SOL", m)
		assert.InDelta(t, 0, units, 1e-9, "method %s", m)
		assert.InDelta(t, 0, cost, 1e-9, "method %s", m)
		assert.Empty(t, lots, "method %s", m)
	}
}

func TestCostBasisOversellTolerated(t *testing.T) {
	// Selling past zero is tracked, not rejected. The append boundary is
	// where balance validation lives.
	trades := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 1, 0),
		tr(2, "BTC", models.TypeSell, 12000, 2, 0),
	}

	for _, m := range allMethods {
		cost, units, lots := costBasis(trades, "BTC", m)
		assert.InDelta(t, -1, units, 1e-9, "method %s", m)
		assert.InDelta(t, 0, cost, 1e-9, "method %s", m)
		assert.Empty(t, lots, "method %s", m)
	}
}

func TestCostBasisZeroQuantityBuyIsNoop(t *testing.T) {
	trades := []models.Trade{tr(1, "BTC", models.TypeBuy, 10000, 0, 0)}

	for _, m := range allMethods {
		cost, units, _ := costBasis(trades, "BTC", m)
		assert.Zero(t, cost, "method %s", m)
		assert.Zero(t, units, "method %s", m)
	}
}

func TestCostBasisHoldingHasNoEffect(t *testing.T) {
	trades := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 1, 0),
		tr(2, "BTC", models.TypeHolding, 0, 0.5, 0),
	}

	for _, m := range allMethods {
		cost, units, _ := costBasis(trades, "BTC", m)
		assert.InDelta(t, 10000, cost, 1e-9, "method %s", m)
		assert.InDelta(t, 1, units, 1e-9, "method %s", m)
	}
}

func TestCostBasisTransferAddsLot(t *testing.T) {
	trades := []models.Trade{tr(1, "ETH", models.TypeTransfer, 1500, 2, 0)}

	cost, units, lots := costBasis(trades, "ETH", FIFO)
	assert.InDelta(t, 3000, cost, 1e-9)
	assert.InDelta(t, 2, units, 1e-9)
	assert.Len(t, lots, 1)
}

func TestCostBasisSortsUnorderedInput(t *testing.T) {
	ordered := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 1, 0),
		tr(2, "BTC", models.TypeBuy, 20000, 1, 0),
		tr(3, "BTC", models.TypeSell, 25000, 1, 0),
	}
	shuffled := []models.Trade{ordered[2], ordered[0], ordered[1]}

	for _, m := range allMethods {
		wantCost, wantUnits, _ := costBasis(ordered, "BTC", m)
		gotCost, gotUnits, _ := costBasis(shuffled, "BTC", m)
		assert.InDelta(t, wantCost, gotCost, 1e-9, "method %s", m)
		assert.InDelta(t, wantUnits, gotUnits, 1e-9, "method %s", m)
	}
}

func TestCostBasisFiltersOtherAssets(t *testing.T) {
	trades := []models.Trade{
		tr(1, "BTC", models.TypeBuy, 10000, 1, 0),
		tr(2, "ETH", models.TypeBuy, 2000, 5, 0),
	}

	cost, units, _ := costBasis(trades, "BTC", FIFO)
	assert.InDelta(t, 10000, cost, 1e-9)
	assert.InDelta(t, 1, units, 1e-9)
}
