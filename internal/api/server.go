package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfeld/cointrack-backend/internal/ethereum"
	"github.com/mfeld/cointrack-backend/internal/ledger"
	"github.com/mfeld/cointrack-backend/internal/models"
	"github.com/mfeld/cointrack-backend/internal/notifications"
	"github.com/mfeld/cointrack-backend/internal/portfolio"
	"github.com/mfeld/cointrack-backend/internal/pricing"
	"github.com/mfeld/cointrack-backend/internal/repository"
)

const maxQueryLimit = 1000

// Deps carries everything the HTTP layer needs. Wallet and Notifier are
// optional; nil disables the corresponding feature.
type Deps struct {
	Pool      *pgxpool.Pool
	Prices    *pricing.Service
	Validator *ledger.Validator
	Notifier  *notifications.Sender
	Wallet    *ethereum.WalletClient
	Method    portfolio.Method
}

type Server struct {
	pool           *pgxpool.Pool
	tradeRepo      *repository.TradeRepo
	accountRepo    *repository.AccountRepo
	projectionRepo *repository.ProjectionRepo
	prices      *pricing.Service
	validator   *ledger.Validator
	notifier    *notifications.Sender
	wallet      *ethereum.WalletClient
	method      portfolio.Method
	httpServer  *http.Server
	apiKey      string
}

func NewServer(d Deps, port int, apiKey, corsOrigin string) *Server {
	s := &Server{
		pool:           d.Pool,
		tradeRepo:      repository.NewTradeRepo(d.Pool),
		accountRepo:    repository.NewAccountRepo(d.Pool),
		projectionRepo: repository.NewProjectionRepo(d.Pool),
		prices:         d.Prices,
		validator:      d.Validator,
		notifier:       d.Notifier,
		wallet:         d.Wallet,
		method:         d.Method,
		apiKey:         apiKey,
	}

	mux := http.NewServeMux()

	// Portfolio routes
	mux.HandleFunc("GET /v1/portfolio/metrics", s.handlePortfolioMetrics)
	mux.HandleFunc("GET /v1/portfolio/realized", s.handlePortfolioRealized)
	mux.HandleFunc("GET /v1/portfolio/available", s.handlePortfolioAvailable)

	// Trade routes
	mux.HandleFunc("GET /v1/trades", s.handleListTrades)
	mux.HandleFunc("POST /v1/trades", s.handleCreateTrade)
	mux.HandleFunc("GET /v1/trades/{id}", s.handleGetTrade)
	mux.HandleFunc("PUT /v1/trades/{id}", s.handleUpdateTrade)
	mux.HandleFunc("DELETE /v1/trades/{id}", s.handleDeleteTrade)

	// Projection routes
	mux.HandleFunc("POST /v1/projections/run", s.handleRunProjection)
	mux.HandleFunc("GET /v1/projections", s.handleListProjections)
	mux.HandleFunc("PUT /v1/projections", s.handleSaveProjections)

	// Price routes
	mux.HandleFunc("GET /v1/prices/{asset}", s.handleGetPrice)
	mux.HandleFunc("POST /v1/prices/refresh", s.handleRefreshPrices)

	// Account routes
	mux.HandleFunc("GET /v1/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /v1/accounts", s.handleCreateAccount)
	mux.HandleFunc("PUT /v1/accounts/{id}", s.handleRenameAccount)
	mux.HandleFunc("DELETE /v1/accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("GET /v1/account-groups", s.handleListGroups)
	mux.HandleFunc("POST /v1/account-groups", s.handleCreateGroup)

	// Wallet reconciliation
	mux.HandleFunc("GET /v1/wallet/balance", s.handleWalletBalance)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// parseMethod resolves the ?method= query parameter, falling back to the
// server's configured default.
func (s *Server) parseMethod(r *http.Request) portfolio.Method {
	v := r.URL.Query().Get("method")
	if v == "" {
		return s.method
	}
	return portfolio.ParseMethod(v)
}

// assetSymbols returns the distinct crypto symbols in a trade set, for
// warming the quote cache before valuation.
func assetSymbols(trades []models.Trade) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range trades {
		if t.IsFiat() || t.Asset == "" || seen[t.Asset] {
			continue
		}
		seen[t.Asset] = true
		out = append(out, t.Asset)
	}
	return out
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
