package ledger

// FeeRates holds an exchange's maker and taker fee rates in percent
// (0.40 means 0.40%).
type FeeRates struct {
	Maker float64 `json:"maker"`
	Taker float64 `json:"taker"`
}

// FeeSchedule maps exchange names to their fee rates.
type FeeSchedule map[string]FeeRates

// DefaultExchanges returns the built-in exchange fee table. "Wallet" is the
// zero-fee entry for self-custody moves.
func DefaultExchanges() FeeSchedule {
	return FeeSchedule{
		"Bitstamp":     {Maker: 0.30, Taker: 0.40},
		"Wallet":       {Maker: 0.0, Taker: 0.0},
		"Binance":      {Maker: 0.10, Taker: 0.10},
		"Coinbase Pro": {Maker: 0.40, Taker: 0.60},
		"Kraken":       {Maker: 0.25, Taker: 0.40},
		"Bybit":        {Maker: 0.10, Taker: 0.10},
		"Crypto.com":   {Maker: 0.25, Taker: 0.50},
	}
}

// Rate returns the percent fee rate for an exchange and order type.
// Unknown order types fall back to the maker rate. ok=false when the
// exchange is not in the schedule.
func (s FeeSchedule) Rate(exchange, orderType string) (float64, bool) {
	rates, ok := s[exchange]
	if !ok {
		return 0, false
	}
	if orderType == "taker" {
		return rates.Taker, true
	}
	return rates.Maker, true
}

// Fee computes the USD fee for a notional amount on the given exchange.
func (s FeeSchedule) Fee(exchange, orderType string, notional float64) (float64, bool) {
	rate, ok := s.Rate(exchange, orderType)
	if !ok {
		return 0, false
	}
	return notional * (rate / 100), true
}
