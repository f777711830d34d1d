package models

import "time"

// PriceQuote is one cached market quote. Change24hPct is nil when the
// upstream API did not include a 24h change for the asset.
type PriceQuote struct {
	Asset        string    `json:"asset"`
	PriceUSD     float64   `json:"priceUsd"`
	Change24hPct *float64  `json:"change24hPct,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
}
