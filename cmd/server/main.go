package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfeld/cointrack-backend/internal/api"
	"github.com/mfeld/cointrack-backend/internal/config"
	"github.com/mfeld/cointrack-backend/internal/db"
	"github.com/mfeld/cointrack-backend/internal/ethereum"
	"github.com/mfeld/cointrack-backend/internal/external"
	"github.com/mfeld/cointrack-backend/internal/ledger"
	"github.com/mfeld/cointrack-backend/internal/notifications"
	"github.com/mfeld/cointrack-backend/internal/portfolio"
	"github.com/mfeld/cointrack-backend/internal/pricing"
	"github.com/mfeld/cointrack-backend/internal/repository"
	"github.com/mfeld/cointrack-backend/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║     CoinTrack Portfolio API v1.0     ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Schema migration failed: %v\n", err)
		os.Exit(1)
	}

	// Repos
	tradeRepo := repository.NewTradeRepo(pool)
	quoteRepo := repository.NewQuoteRepo(pool)

	// Pricing service backed by CoinGecko, warmed from persisted quotes
	prices := pricing.NewService(
		external.NewCoinGeckoClient(),
		quoteRepo,
		time.Duration(cfg.PriceCacheTTLMinutes)*time.Minute,
	)
	if warmed, err := prices.Warm(context.Background()); err != nil {
		fmt.Printf("[PRICE] Cache warm failed: %v\n", err)
	} else if warmed > 0 {
		fmt.Printf("[PRICE] Warmed %d quotes from persisted cache\n", warmed)
	}

	// Ledger validation (fee derivation + account protection limits)
	method := portfolio.ParseMethod(cfg.CostBasisMethod)
	validator := ledger.NewValidator(ledger.DefaultExchanges(), ledger.Limits{
		MaxPositionSizeUSD: cfg.MaxPositionSizeUSD,
		MaxDailyTrades:     cfg.MaxDailyTrades,
	}, tradeRepo, method)

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// Watch-only wallet (optional)
	var wallet *ethereum.WalletClient
	if cfg.EthereumAPIEndpoint != "" {
		wallet, err = ethereum.NewWalletClient(cfg.EthereumAPIEndpoint, cfg.WatchWalletAddress)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ETH] Wallet client failed: %v\n", err)
			os.Exit(1)
		}
		defer wallet.Close()
		fmt.Printf("[ETH] Watching wallet %s\n", wallet.Address().Hex())
	} else {
		fmt.Println("[ETH] Wallet reconciliation disabled - no ETHEREUM_API_ENDPOINT configured")
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(api.Deps{
		Pool:      pool,
		Prices:    prices,
		Validator: validator,
		Notifier:  notify,
		Wallet:    wallet,
		Method:    method,
	}, cfg.Port, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Background price refresher
	refresher := scheduler.NewPriceRefresher(prices, tradeRepo, scheduler.PriceRefresherConfig{
		Interval: time.Duration(cfg.PriceRefreshIntervalMinutes) * time.Minute,
	})
	refresher.Start()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
