package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mfeld/cointrack-backend/internal/httputil"
	"github.com/mfeld/cointrack-backend/internal/models"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3/simple/price"

// coingeckoIDs maps ticker symbols to CoinGecko coin ids. Symbols not in
// the table fall back to their lowercased form, which covers coins whose
// id happens to match the ticker.
var coingeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"ADA":   "cardano",
	"SOL":   "solana",
	"XRP":   "ripple",
	"DOT":   "polkadot",
	"DOGE":  "dogecoin",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"LTC":   "litecoin",
	"ALGO":  "algorand",
}

type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    coingeckoBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// NewCoinGeckoClientWithURL is for tests that point the client at a fake
// server.
func NewCoinGeckoClientWithURL(baseURL string) *CoinGeckoClient {
	c := NewCoinGeckoClient()
	c.baseURL = baseURL
	c.retry = httputil.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return c
}

// CoinID resolves a ticker symbol to the CoinGecko coin id.
func CoinID(symbol string) string {
	if id, ok := coingeckoIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// FetchQuotes fetches USD price and 24h change for the given symbols in one
// batched simple-price call. Symbols the API does not know are absent from
// the result rather than an error. USDC is pinned at $1.00 with 0% change
// and never hits the network.
func (c *CoinGeckoClient) FetchQuotes(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	quotes := map[string]models.PriceQuote{}
	now := time.Now()

	idToSymbol := map[string]string{}
	var ids []string
	for _, s := range symbols {
		sym := strings.ToUpper(s)
		if sym == "" || sym == models.USDAsset {
			continue
		}
		if sym == "USDC" {
			zero := 0.0
			quotes[sym] = models.PriceQuote{Asset: sym, PriceUSD: 1.0, Change24hPct: &zero, FetchedAt: now}
			continue
		}
		id := CoinID(sym)
		if _, dup := idToSymbol[id]; dup {
			continue
		}
		idToSymbol[id] = sym
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return quotes, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	reqURL := c.baseURL + "?" + q.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var data map[string]struct {
		USD       float64  `json:"usd"`
		Change24h *float64 `json:"usd_24h_change"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	for id, entry := range data {
		sym, ok := idToSymbol[id]
		if !ok || entry.USD <= 0 {
			continue
		}
		quotes[sym] = models.PriceQuote{
			Asset:        sym,
			PriceUSD:     entry.USD,
			Change24hPct: entry.Change24h,
			FetchedAt:    now,
		}
	}
	return quotes, nil
}

// FetchQuote is the single-symbol convenience wrapper.
func (c *CoinGeckoClient) FetchQuote(ctx context.Context, symbol string) (models.PriceQuote, error) {
	quotes, err := c.FetchQuotes(ctx, []string{symbol})
	if err != nil {
		return models.PriceQuote{}, err
	}
	q, ok := quotes[strings.ToUpper(symbol)]
	if !ok {
		return models.PriceQuote{}, fmt.Errorf("no quote for %q", symbol)
	}
	return q, nil
}
