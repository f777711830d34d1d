package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mfeld/cointrack-backend/internal/pricing"
)

// AssetSource lists the symbols whose quotes need refreshing, normally the
// distinct assets in the trade ledger.
type AssetSource interface {
	Assets(ctx context.Context) ([]string, error)
}

type PriceRefresherConfig struct {
	Interval  time.Duration     // e.g. 15*time.Minute
	OnRefresh func(updated int) // optional hook after each successful cycle
}

// PriceRefresher keeps the quote cache warm so dashboard requests rarely
// block on CoinGecko. Valuation never depends on it running; a cold cache
// just means cost-basis fallback pricing until the next fetch.
type PriceRefresher struct {
	prices *pricing.Service
	assets AssetSource
	cfg    PriceRefresherConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewPriceRefresher(prices *pricing.Service, assets AssetSource, cfg PriceRefresherConfig) *PriceRefresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	return &PriceRefresher{
		prices: prices,
		assets: assets,
		cfg:    cfg,
	}
}

func (p *PriceRefresher) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		fmt.Println("[PRICE-REFRESHER] Already running")
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	// Initial refresh on startup (fire-and-forget)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := p.refresh(ctx); err != nil {
			fmt.Printf("[PRICE-REFRESHER] Initial refresh failed: %v\n", err)
		}
	}()

	// Recurring ticker
	go func() {
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				if err := p.refresh(ctx); err != nil {
					fmt.Printf("[PRICE-REFRESHER] Refresh failed: %v\n", err)
				}
				cancel()
			}
		}
	}()

	fmt.Printf("[PRICE-REFRESHER] Started (every %s)\n", p.cfg.Interval)
}

func (p *PriceRefresher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
	fmt.Println("[PRICE-REFRESHER] Stopped")
}

func (p *PriceRefresher) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// RefreshNow manually triggers a refresh outside the normal schedule.
func (p *PriceRefresher) RefreshNow(ctx context.Context) error {
	fmt.Println("[PRICE-REFRESHER] Manual refresh triggered")
	return p.refresh(ctx)
}

func (p *PriceRefresher) refresh(ctx context.Context) error {
	assets, err := p.assets.Assets(ctx)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}
	if len(assets) == 0 {
		fmt.Println("[PRICE-REFRESHER] No assets in ledger, nothing to refresh")
		return nil
	}

	updated, err := p.prices.RefreshAll(ctx, assets)
	if err != nil {
		return fmt.Errorf("refresh quotes: %w", err)
	}

	fmt.Printf("[PRICE-REFRESHER] Updated %d/%d quotes\n", updated, len(assets))
	if p.cfg.OnRefresh != nil {
		p.cfg.OnRefresh(updated)
	}
	return nil
}
