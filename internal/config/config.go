package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	APIKey          string
	CORSAllowOrigin string
	WebhookURL      string
	BotName         string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Server
	Port int

	// Accounting
	CostBasisMethod string

	// Pricing
	PriceCacheTTLMinutes        int
	PriceRefreshIntervalMinutes int

	// Account protection
	MaxDailyTrades     int
	MaxPositionSizeUSD float64

	// Watch-only wallet reconciliation
	EthereumAPIEndpoint string
	WatchWalletAddress  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "CoinTrack"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "cointrack"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Server
		Port: envInt("PORT", 8080),

		// Accounting
		CostBasisMethod: envStr("COST_BASIS_METHOD", "average"),

		// Pricing
		PriceCacheTTLMinutes:        envInt("PRICE_CACHE_TTL_MINUTES", 5),
		PriceRefreshIntervalMinutes: envInt("PRICE_REFRESH_INTERVAL_MINUTES", 15),

		// Account protection
		MaxDailyTrades:     envInt("MAX_DAILY_TRADES", 0),
		MaxPositionSizeUSD: envFloat("MAX_POSITION_SIZE_USD", 0),

		// Watch-only wallet
		EthereumAPIEndpoint: envStr("ETHEREUM_API_ENDPOINT", ""),
		WatchWalletAddress:  envStr("WATCH_WALLET_ADDRESS", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	switch strings.ToLower(c.CostBasisMethod) {
	case "fifo", "lifo", "average":
	default:
		errs = append(errs, fmt.Sprintf("COST_BASIS_METHOD %q is not one of fifo|lifo|average", c.CostBasisMethod))
	}
	if c.PriceCacheTTLMinutes <= 0 {
		errs = append(errs, "PRICE_CACHE_TTL_MINUTES must be positive")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}
	if c.MaxDailyTrades == 0 && c.MaxPositionSizeUSD == 0 {
		fmt.Println("[WARN] MAX_DAILY_TRADES and MAX_POSITION_SIZE_USD are both 0, no per-trade limits active")
	}
	if c.EthereumAPIEndpoint != "" && c.WatchWalletAddress == "" {
		errs = append(errs, "WATCH_WALLET_ADDRESS is required when ETHEREUM_API_ENDPOINT is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== CoinTrack Portfolio Backend Configuration ===")
	fmt.Printf("Database: %s@%s:%d/%s\n", c.DBUser, c.DBHost, c.DBPort, c.DBName)
	fmt.Printf("API Port: %d\n", c.Port)
	fmt.Println("--------------------------------------")
	fmt.Println("Accounting:")
	fmt.Printf("  Cost Basis Method: %s\n", strings.ToLower(c.CostBasisMethod))
	fmt.Println("--------------------------------------")
	fmt.Println("Pricing:")
	fmt.Printf("  Cache TTL: %d minutes\n", c.PriceCacheTTLMinutes)
	fmt.Printf("  Refresh Interval: %d minutes\n", c.PriceRefreshIntervalMinutes)
	fmt.Println("--------------------------------------")
	fmt.Println("Account Protection:")
	fmt.Printf("  Max Daily Trades: %s\n", limitLabel(float64(c.MaxDailyTrades)))
	fmt.Printf("  Max Position Size: %s\n", limitLabel(c.MaxPositionSizeUSD))
	fmt.Println("--------------------------------------")
	fmt.Printf("Wallet Reconciliation: %s\n", boolLabel(c.EthereumAPIEndpoint != "", "enabled", "disabled"))
	if c.WatchWalletAddress != "" && len(c.WatchWalletAddress) > 16 {
		fmt.Printf("  Watch Wallet: %s...%s\n", c.WatchWalletAddress[:10], c.WatchWalletAddress[len(c.WatchWalletAddress)-6:])
	}
	fmt.Printf("Notifications: %s\n", boolLabel(c.WebhookURL != "", "enabled", "disabled"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func limitLabel(v float64) string {
	if v <= 0 {
		return "disabled"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
