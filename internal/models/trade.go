package models

import "time"

// USDAsset is the reserved symbol for fiat cash. Every other symbol is a
// crypto asset.
const USDAsset = "USD"

// Trade types. Deposit/Withdrawal are valid only for USD; the rest only for
// crypto assets.
const (
	TypeBuy        = "BUY"
	TypeSell       = "SELL"
	TypeHolding    = "Holding"
	TypeTransfer   = "Transfer"
	TypeDeposit    = "Deposit"
	TypeWithdrawal = "Withdrawal"
)

// Trade is one ledger event. Quantity is always >= 0; direction is implied
// by Type. TotalValue is the USD notional at execution (price*quantity for
// crypto, the fiat amount for deposits/withdrawals) and is trusted as stored.
type Trade struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Asset      string    `json:"asset"`
	Type       string    `json:"type"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	Fee        float64   `json:"fee"`
	TotalValue float64   `json:"totalValue"`
	Exchange   string    `json:"exchange,omitempty"`
	OrderType  string    `json:"orderType,omitempty"`
	AccountID  string    `json:"accountId,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// IsFiat reports whether the trade is a USD cash event.
func (t Trade) IsFiat() bool { return t.Asset == USDAsset }

// Acquires reports whether the trade adds units to the sellable pool.
func (t Trade) Acquires() bool { return t.Type == TypeBuy || t.Type == TypeTransfer }

// ValidType reports whether the type/asset pairing is one the ledger accepts.
func ValidType(asset, tradeType string) bool {
	switch tradeType {
	case TypeDeposit, TypeWithdrawal:
		return asset == USDAsset
	case TypeBuy, TypeSell, TypeHolding, TypeTransfer:
		return asset != USDAsset && asset != ""
	default:
		return false
	}
}
