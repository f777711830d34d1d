package pricing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mfeld/cointrack-backend/internal/models"
)

type fakeFetcher struct {
	quotes map[string]models.PriceQuote
	err    error
	calls  int
}

func (f *fakeFetcher) FetchQuotes(_ context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]models.PriceQuote{}
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

type fakeStore struct {
	saved  []models.PriceQuote
	listed []models.PriceQuote
}

func (f *fakeStore) UpsertQuote(_ context.Context, q models.PriceQuote) error {
	f.saved = append(f.saved, q)
	return nil
}

func (f *fakeStore) ListQuotes(_ context.Context) ([]models.PriceQuote, error) {
	return f.listed, nil
}

func quote(asset string, price float64, change *float64, age time.Duration) models.PriceQuote {
	return models.PriceQuote{Asset: asset, PriceUSD: price, Change24hPct: change, FetchedAt: time.Now().Add(-age)}
}

func TestPriceCacheMissAndEnsure(t *testing.T) {
	fetcher := &fakeFetcher{quotes: map[string]models.PriceQuote{
		"BTC": quote("BTC", 60000, nil, 0),
	}}
	svc := NewService(fetcher, nil, time.Minute)

	if _, ok := svc.Price("BTC"); ok {
		t.Fatal("expected cache miss before EnsureQuotes")
	}

	svc.EnsureQuotes(context.Background(), []string{"btc", "USD", "USDC"})
	price, ok := svc.Price("btc")
	if !ok || price != 60000 {
		t.Fatalf("Price(btc) = %v, %v", price, ok)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.calls)
	}

	// Cached now, so a second ensure stays off the network.
	svc.EnsureQuotes(context.Background(), []string{"BTC"})
	if fetcher.calls != 1 {
		t.Fatalf("expected fetch count to stay at 1, got %d", fetcher.calls)
	}
}

func TestPriceUSDCPinned(t *testing.T) {
	svc := NewService(&fakeFetcher{}, nil, time.Minute)
	price, ok := svc.Price("USDC")
	if !ok || price != 1.0 {
		t.Fatalf("Price(USDC) = %v, %v", price, ok)
	}
	pct, ok := svc.Change24h("usdc")
	if !ok || pct != 0 {
		t.Fatalf("Change24h(usdc) = %v, %v", pct, ok)
	}
}

func TestChange24h(t *testing.T) {
	pct := 3.7
	fetcher := &fakeFetcher{quotes: map[string]models.PriceQuote{
		"ETH": quote("ETH", 2500, &pct, 0),
		"ADA": quote("ADA", 0.5, nil, 0),
	}}
	svc := NewService(fetcher, nil, time.Minute)
	svc.EnsureQuotes(context.Background(), []string{"ETH", "ADA"})

	got, ok := svc.Change24h("ETH")
	if !ok || got != 3.7 {
		t.Fatalf("Change24h(ETH) = %v, %v", got, ok)
	}
	if _, ok := svc.Change24h("ADA"); ok {
		t.Fatal("ADA has no change figure, expected ok=false")
	}
	if _, ok := svc.Change24h("SOL"); ok {
		t.Fatal("SOL not cached, expected ok=false")
	}
}

func TestWarmSkipsStaleQuotes(t *testing.T) {
	store := &fakeStore{listed: []models.PriceQuote{
		quote("BTC", 60000, nil, 10*time.Second),
		quote("ETH", 2500, nil, 2*time.Minute),
	}}
	svc := NewService(&fakeFetcher{}, store, time.Minute)

	loaded, err := svc.Warm(context.Background())
	if err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected 1 quote loaded, got %d", loaded)
	}
	if _, ok := svc.Price("BTC"); !ok {
		t.Fatal("fresh BTC quote should be cached")
	}
	if _, ok := svc.Price("ETH"); ok {
		t.Fatal("stale ETH quote should be skipped")
	}
}

func TestQuoteFetchOnMissAndPersist(t *testing.T) {
	fetcher := &fakeFetcher{quotes: map[string]models.PriceQuote{
		"SOL": quote("SOL", 150, nil, 0),
	}}
	store := &fakeStore{}
	svc := NewService(fetcher, store, time.Minute)

	q, err := svc.Quote(context.Background(), "sol")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.PriceUSD != 150 {
		t.Fatalf("SOL price = %v", q.PriceUSD)
	}
	if len(store.saved) != 1 || store.saved[0].Asset != "SOL" {
		t.Fatalf("expected SOL persisted, got %+v", store.saved)
	}

	// Second call is a cache hit.
	if _, err := svc.Quote(context.Background(), "SOL"); err != nil {
		t.Fatalf("cached Quote: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.calls)
	}
}

func TestQuoteUnknownAsset(t *testing.T) {
	svc := NewService(&fakeFetcher{}, nil, time.Minute)
	if _, err := svc.Quote(context.Background(), "NOTACOIN"); err == nil {
		t.Fatal("expected error for unknown asset")
	}
}

func TestRefreshAll(t *testing.T) {
	fetcher := &fakeFetcher{quotes: map[string]models.PriceQuote{
		"BTC": quote("BTC", 61000, nil, 0),
		"ETH": quote("ETH", 2600, nil, 0),
	}}
	svc := NewService(fetcher, nil, time.Minute)

	n, err := svc.RefreshAll(context.Background(), []string{"BTC", "ETH", "USD"})
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 quotes refreshed, got %d", n)
	}
	price, _ := svc.Price("BTC")
	if price != 61000 {
		t.Fatalf("BTC price = %v", price)
	}
}

func TestRefreshAllFetchError(t *testing.T) {
	svc := NewService(&fakeFetcher{err: fmt.Errorf("rate limited")}, nil, time.Minute)
	if _, err := svc.RefreshAll(context.Background(), []string{"BTC"}); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}
