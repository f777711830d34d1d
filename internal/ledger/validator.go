package ledger

import (
	"context"
	"fmt"

	"github.com/mfeld/cointrack-backend/internal/models"
	"github.com/mfeld/cointrack-backend/internal/portfolio"
)

// DailyTradeCounter abstracts the trade-counting dependency so the
// validator can be tested without a real database.
type DailyTradeCounter interface {
	CountToday(ctx context.Context) (int, error)
}

// Limits holds the optional account protection thresholds from config.
// A zero value for any field means that check is disabled.
type Limits struct {
	MaxPositionSizeUSD float64
	MaxDailyTrades     int
}

// Validator enforces the append-boundary rules before a trade enters the
// ledger. The valuation core deliberately tolerates inconsistent history
// (overselling, negative balances); this is the one place bad entries get
// rejected instead.
type Validator struct {
	fees    FeeSchedule
	limits  Limits
	counter DailyTradeCounter
	method  portfolio.Method
}

func NewValidator(fees FeeSchedule, limits Limits, counter DailyTradeCounter, method portfolio.Method) *Validator {
	if fees == nil {
		fees = DefaultExchanges()
	}
	return &Validator{fees: fees, limits: limits, counter: counter, method: method}
}

// Prepare validates a candidate trade against the existing ledger and fills
// in its derived fields (fee from the exchange schedule, total value).
// Returns nil if the trade may be appended, a descriptive error if not.
// The existing slice is read-only here.
func (v *Validator) Prepare(ctx context.Context, existing []models.Trade, t *models.Trade) error {
	if !models.ValidType(t.Asset, t.Type) {
		return fmt.Errorf("trade rejected: type %q is not valid for asset %q", t.Type, t.Asset)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("trade rejected: quantity must be greater than 0")
	}

	if t.IsFiat() {
		// Fiat events carry the USD amount in quantity; the price, fee and
		// exchange fields stay blank.
		t.Price = 0
		t.Fee = 0
		t.Exchange = ""
		t.OrderType = ""
		t.TotalValue = t.Quantity
	} else {
		if t.Price <= 0 {
			return fmt.Errorf("trade rejected: price must be greater than 0")
		}
		t.TotalValue = t.Price * t.Quantity

		switch t.Type {
		case models.TypeBuy, models.TypeSell:
			fee, ok := v.fees.Fee(t.Exchange, t.OrderType, t.TotalValue)
			if !ok {
				return fmt.Errorf("trade rejected: unknown exchange %q", t.Exchange)
			}
			t.Fee = fee
		default:
			// Transfer and Holding move units, not money.
			t.Fee = 0
			t.OrderType = ""
		}
	}

	if t.Type == models.TypeHolding {
		available := portfolio.AvailableQuantity(existing, t.Asset, v.method)
		if t.Quantity > available {
			return fmt.Errorf("trade rejected: holding amount exceeds available %s balance (available %.8f, requested %.8f)",
				t.Asset, available, t.Quantity)
		}
	}

	if t.Type == models.TypeSell || t.Type == models.TypeWithdrawal {
		available := portfolio.AvailableQuantity(existing, t.Asset, v.method)
		if t.Quantity > available {
			return fmt.Errorf("trade rejected: insufficient %s balance (available %.8f, requested %.8f)",
				t.Asset, available, t.Quantity)
		}
	}

	if v.limits.MaxPositionSizeUSD > 0 && !t.IsFiat() && t.TotalValue > v.limits.MaxPositionSizeUSD {
		return fmt.Errorf("trade rejected: position size $%.2f exceeds max $%.2f",
			t.TotalValue, v.limits.MaxPositionSizeUSD)
	}

	if v.limits.MaxDailyTrades > 0 && v.counter != nil {
		count, err := v.counter.CountToday(ctx)
		if err != nil {
			return fmt.Errorf("trade rejected: unable to verify daily trade count: %w", err)
		}
		if count >= v.limits.MaxDailyTrades {
			return fmt.Errorf("trade rejected: daily limit of %d trades reached (%d recorded today)",
				v.limits.MaxDailyTrades, count)
		}
	}

	return nil
}
