package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mfeld/cointrack-backend/internal/models"
	"github.com/mfeld/cointrack-backend/internal/portfolio"
)

type mockCounter struct {
	count int
	err   error
}

func (m *mockCounter) CountToday(_ context.Context) (int, error) {
	return m.count, m.err
}

func newTestValidator(limits Limits, counter DailyTradeCounter) *Validator {
	return NewValidator(DefaultExchanges(), limits, counter, portfolio.Average)
}

func ledgerWith(trades ...models.Trade) []models.Trade { return trades }

func buyBTC(qty, price float64) models.Trade {
	return models.Trade{
		ID:         "seed-buy",
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Asset:      "BTC",
		Type:       models.TypeBuy,
		Price:      price,
		Quantity:   qty,
		TotalValue: price * qty,
	}
}

func deposit(amount float64) models.Trade {
	return models.Trade{
		ID:         "seed-dep",
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Asset:      models.USDAsset,
		Type:       models.TypeDeposit,
		Quantity:   amount,
		TotalValue: amount,
	}
}

// --- Prepare: derived fields ---

func TestPrepare_BuyComputesFeeFromSchedule(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 10000, Quantity: 0.5,
		Exchange: "Kraken", OrderType: "taker",
	}
	if err := v.Prepare(context.Background(), nil, &trade); err != nil {
		t.Fatalf("expected trade to be allowed, got: %v", err)
	}
	if trade.TotalValue != 5000 {
		t.Fatalf("total value = %v, want 5000", trade.TotalValue)
	}
	// Kraken taker is 0.40% of 5000.
	if trade.Fee != 20 {
		t.Fatalf("fee = %v, want 20", trade.Fee)
	}
}

func TestPrepare_UnknownOrderTypeFallsBackToMaker(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 10000, Quantity: 1,
		Exchange: "Bitstamp", OrderType: "",
	}
	if err := v.Prepare(context.Background(), nil, &trade); err != nil {
		t.Fatalf("expected trade to be allowed, got: %v", err)
	}
	if trade.Fee != 30 {
		t.Fatalf("fee = %v, want 30 (Bitstamp maker 0.30%% of 10000)", trade.Fee)
	}
}

func TestPrepare_UnknownExchangeRejected(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 10000, Quantity: 1, Exchange: "MtGox",
	}
	err := v.Prepare(context.Background(), nil, &trade)
	if err == nil {
		t.Fatal("expected unknown exchange to be rejected")
	}
	t.Logf("Correctly rejected: %v", err)
}

func TestPrepare_TransferHasNoFee(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{
		Asset: "ETH", Type: models.TypeTransfer,
		Price: 2000, Quantity: 1, OrderType: "taker",
	}
	if err := v.Prepare(context.Background(), nil, &trade); err != nil {
		t.Fatalf("expected transfer to be allowed, got: %v", err)
	}
	if trade.Fee != 0 || trade.OrderType != "" {
		t.Fatalf("transfer should clear fee and order type, got fee=%v orderType=%q", trade.Fee, trade.OrderType)
	}
}

func TestPrepare_FiatNormalizesFields(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{
		Asset: models.USDAsset, Type: models.TypeDeposit,
		Price: 123, Quantity: 1000, Exchange: "Kraken", OrderType: "maker",
	}
	if err := v.Prepare(context.Background(), nil, &trade); err != nil {
		t.Fatalf("expected deposit to be allowed, got: %v", err)
	}
	if trade.Price != 0 || trade.Fee != 0 || trade.Exchange != "" || trade.OrderType != "" {
		t.Fatalf("fiat fields not cleared: %+v", trade)
	}
	if trade.TotalValue != 1000 {
		t.Fatalf("total value = %v, want 1000", trade.TotalValue)
	}
}

// --- Prepare: rejection rules ---

func TestPrepare_InvalidTypeAssetPairing(t *testing.T) {
	v := newTestValidator(Limits{}, nil)

	cases := []models.Trade{
		{Asset: models.USDAsset, Type: models.TypeBuy, Price: 1, Quantity: 1},
		{Asset: "BTC", Type: models.TypeDeposit, Price: 1, Quantity: 1},
		{Asset: "BTC", Type: "SHORT", Price: 1, Quantity: 1},
	}
	for _, trade := range cases {
		if err := v.Prepare(context.Background(), nil, &trade); err == nil {
			t.Fatalf("expected %s %s to be rejected", trade.Type, trade.Asset)
		}
	}
}

func TestPrepare_NonPositiveQuantityRejected(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{Asset: "BTC", Type: models.TypeBuy, Price: 100, Quantity: 0}
	if err := v.Prepare(context.Background(), nil, &trade); err == nil {
		t.Fatal("expected zero quantity to be rejected")
	}
}

func TestPrepare_NonPositivePriceRejected(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{Asset: "BTC", Type: models.TypeBuy, Price: 0, Quantity: 1}
	if err := v.Prepare(context.Background(), nil, &trade); err == nil {
		t.Fatal("expected zero price to be rejected")
	}
}

func TestPrepare_SellInsufficientBalance(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	existing := ledgerWith(buyBTC(1, 10000))

	trade := models.Trade{
		Asset: "BTC", Type: models.TypeSell,
		Price: 12000, Quantity: 2, Exchange: "Binance", OrderType: "maker",
	}
	err := v.Prepare(context.Background(), existing, &trade)
	if err == nil {
		t.Fatal("expected oversell to be rejected")
	}
	t.Logf("Correctly rejected: %v", err)
}

func TestPrepare_SellWithinBalanceAllowed(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	existing := ledgerWith(buyBTC(1, 10000))

	trade := models.Trade{
		Asset: "BTC", Type: models.TypeSell,
		Price: 12000, Quantity: 1, Exchange: "Binance", OrderType: "maker",
	}
	if err := v.Prepare(context.Background(), existing, &trade); err != nil {
		t.Fatalf("expected sell to be allowed, got: %v", err)
	}
}

func TestPrepare_WithdrawalExceedsCash(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	existing := ledgerWith(deposit(500))

	trade := models.Trade{Asset: models.USDAsset, Type: models.TypeWithdrawal, Quantity: 600}
	err := v.Prepare(context.Background(), existing, &trade)
	if err == nil {
		t.Fatal("expected withdrawal past cash balance to be rejected")
	}
	t.Logf("Correctly rejected: %v", err)
}

func TestPrepare_HoldingExceedsAvailable(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	existing := ledgerWith(buyBTC(1, 10000))

	trade := models.Trade{Asset: "BTC", Type: models.TypeHolding, Price: 10000, Quantity: 1.5}
	err := v.Prepare(context.Background(), existing, &trade)
	if err == nil {
		t.Fatal("expected oversized holding to be rejected")
	}
	t.Logf("Correctly rejected: %v", err)
}

// --- Prepare: limits ---

func TestPrepare_PositionSize_Blocked(t *testing.T) {
	v := newTestValidator(Limits{MaxPositionSizeUSD: 500}, nil)
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 10000, Quantity: 0.06, Exchange: "Binance", OrderType: "maker",
	}
	err := v.Prepare(context.Background(), nil, &trade)
	if err == nil {
		t.Fatal("expected trade to be blocked by position size")
	}
	t.Logf("Correctly blocked: %v", err)
}

func TestPrepare_PositionSize_DisabledWhenZero(t *testing.T) {
	v := newTestValidator(Limits{}, nil)
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 100000, Quantity: 10, Exchange: "Binance", OrderType: "maker",
	}
	if err := v.Prepare(context.Background(), nil, &trade); err != nil {
		t.Fatalf("zero limit should disable check, got: %v", err)
	}
}

func TestPrepare_DailyTrades_Blocked(t *testing.T) {
	v := newTestValidator(Limits{MaxDailyTrades: 50}, &mockCounter{count: 50})
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 100, Quantity: 1, Exchange: "Binance", OrderType: "maker",
	}
	err := v.Prepare(context.Background(), nil, &trade)
	if err == nil {
		t.Fatal("expected trade to be blocked (50/50)")
	}
	t.Logf("Correctly blocked: %v", err)
}

func TestPrepare_DailyTrades_Allowed(t *testing.T) {
	v := newTestValidator(Limits{MaxDailyTrades: 50}, &mockCounter{count: 49})
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 100, Quantity: 1, Exchange: "Binance", OrderType: "maker",
	}
	if err := v.Prepare(context.Background(), nil, &trade); err != nil {
		t.Fatalf("expected trade to be allowed (49/50), got: %v", err)
	}
}

func TestPrepare_DailyTrades_CounterError(t *testing.T) {
	v := newTestValidator(Limits{MaxDailyTrades: 50}, &mockCounter{err: fmt.Errorf("db down")})
	trade := models.Trade{
		Asset: "BTC", Type: models.TypeBuy,
		Price: 100, Quantity: 1, Exchange: "Binance", OrderType: "maker",
	}
	if err := v.Prepare(context.Background(), nil, &trade); err == nil {
		t.Fatal("expected error when counter fails")
	}
}

// --- Fee schedule ---

func TestFeeSchedule_Rates(t *testing.T) {
	s := DefaultExchanges()

	rate, ok := s.Rate("Coinbase Pro", "taker")
	if !ok || rate != 0.60 {
		t.Fatalf("Coinbase Pro taker = %v (ok=%v), want 0.60", rate, ok)
	}
	rate, ok = s.Rate("Wallet", "maker")
	if !ok || rate != 0 {
		t.Fatalf("Wallet maker = %v (ok=%v), want 0", rate, ok)
	}
	if _, ok := s.Rate("MtGox", "maker"); ok {
		t.Fatal("unknown exchange should not resolve")
	}
}

func TestFeeSchedule_Fee(t *testing.T) {
	s := DefaultExchanges()
	fee, ok := s.Fee("Binance", "taker", 10000)
	if !ok || fee != 10 {
		t.Fatalf("fee = %v (ok=%v), want 10", fee, ok)
	}
}
