package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mfeld/cointrack-backend/internal/models"
)

// Fetcher is the remote quote source (CoinGecko in production).
type Fetcher interface {
	FetchQuotes(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error)
}

// QuoteStore persists quotes so a restart does not start from a cold cache.
// Optional; a nil store disables persistence.
type QuoteStore interface {
	UpsertQuote(ctx context.Context, q models.PriceQuote) error
	ListQuotes(ctx context.Context) ([]models.PriceQuote, error)
}

// Service caches quotes in memory with a freshness TTL and falls back to the
// fetcher on miss. The valuation core receives its Price and Change24h
// methods as plain lookup functions, so this package never leaks into the
// accounting logic.
type Service struct {
	fetcher Fetcher
	store   QuoteStore
	cache   *gocache.Cache
	ttl     time.Duration
}

func NewService(fetcher Fetcher, store QuoteStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		fetcher: fetcher,
		store:   store,
		cache:   gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

// Warm loads persisted quotes into the in-memory cache. Entries older than
// the TTL are skipped; they would only serve stale prices. Returns the
// number of quotes loaded.
func (s *Service) Warm(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	quotes, err := s.store.ListQuotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("warm price cache: %w", err)
	}
	loaded := 0
	for _, q := range quotes {
		age := time.Since(q.FetchedAt)
		if age >= s.ttl {
			continue
		}
		s.cache.Set(strings.ToUpper(q.Asset), q, s.ttl-age)
		loaded++
	}
	return loaded, nil
}

// Price returns the cached USD price for an asset. USDC is pinned at $1.00.
// ok=false on cache miss; callers wanting a fetch-on-miss use EnsureQuotes
// first. The signature matches portfolio.PriceLookup.
func (s *Service) Price(asset string) (float64, bool) {
	sym := strings.ToUpper(asset)
	if sym == "USDC" {
		return 1.0, true
	}
	if v, ok := s.cache.Get(sym); ok {
		return v.(models.PriceQuote).PriceUSD, true
	}
	return 0, false
}

// Change24h returns the cached 24h percent change. USDC is pinned at 0.
// The signature matches portfolio.ChangeLookup.
func (s *Service) Change24h(asset string) (float64, bool) {
	sym := strings.ToUpper(asset)
	if sym == "USDC" {
		return 0, true
	}
	v, ok := s.cache.Get(sym)
	if !ok {
		return 0, false
	}
	q := v.(models.PriceQuote)
	if q.Change24hPct == nil {
		return 0, false
	}
	return *q.Change24hPct, true
}

// Quote returns a cached quote, fetching it when missing or expired.
func (s *Service) Quote(ctx context.Context, asset string) (models.PriceQuote, error) {
	sym := strings.ToUpper(asset)
	if v, ok := s.cache.Get(sym); ok {
		return v.(models.PriceQuote), nil
	}
	quotes, err := s.fetchAndCache(ctx, []string{sym})
	if err != nil {
		return models.PriceQuote{}, err
	}
	q, ok := quotes[sym]
	if !ok {
		return models.PriceQuote{}, fmt.Errorf("no quote available for %q", sym)
	}
	return q, nil
}

// EnsureQuotes fetches any of the given assets missing from the cache, in
// one batched call. Fetch failures are not fatal: the valuation core
// degrades to cost-basis pricing for the assets left uncovered.
func (s *Service) EnsureQuotes(ctx context.Context, assets []string) {
	var missing []string
	for _, a := range assets {
		sym := strings.ToUpper(a)
		if sym == models.USDAsset || sym == "USDC" {
			continue
		}
		if _, ok := s.cache.Get(sym); !ok {
			missing = append(missing, sym)
		}
	}
	if len(missing) == 0 {
		return
	}
	if _, err := s.fetchAndCache(ctx, missing); err != nil {
		fmt.Printf("[PRICE] Fetch failed for %v: %v\n", missing, err)
	}
}

// RefreshAll re-fetches every given asset regardless of cache state and
// returns how many quotes were updated.
func (s *Service) RefreshAll(ctx context.Context, assets []string) (int, error) {
	var symbols []string
	for _, a := range assets {
		sym := strings.ToUpper(a)
		if sym == models.USDAsset {
			continue
		}
		symbols = append(symbols, sym)
	}
	if len(symbols) == 0 {
		return 0, nil
	}
	quotes, err := s.fetchAndCache(ctx, symbols)
	if err != nil {
		return 0, err
	}
	return len(quotes), nil
}

func (s *Service) fetchAndCache(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	quotes, err := s.fetcher.FetchQuotes(ctx, symbols)
	if err != nil {
		return nil, err
	}
	for sym, q := range quotes {
		s.cache.Set(sym, q, s.ttl)
		if s.store != nil {
			if err := s.store.UpsertQuote(ctx, q); err != nil {
				fmt.Printf("[PRICE] Persist quote %s failed: %v\n", sym, err)
			}
		}
	}
	return quotes, nil
}
