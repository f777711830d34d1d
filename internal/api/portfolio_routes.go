package api

import (
	"fmt"
	"net/http"

	"github.com/mfeld/cointrack-backend/internal/models"
	"github.com/mfeld/cointrack-backend/internal/portfolio"
)

type metricsResponse struct {
	Method       string                  `json:"method"`
	Metrics      models.PortfolioMetrics `json:"metrics"`
	Change24hUSD *float64                `json:"change24hUsd,omitempty"`
}

func (s *Server) handlePortfolioMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	method := s.parseMethod(r)

	trades, err := s.tradeRepo.ListAll(ctx, r.URL.Query().Get("account"))
	if err != nil {
		fmt.Printf("Error loading trades for metrics: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	s.prices.EnsureQuotes(ctx, assetSymbols(trades))
	m := portfolio.ComputeMetrics(trades, method, s.prices.Price)

	resp := metricsResponse{Method: string(method), Metrics: m}
	if delta, ok := portfolio.Change24hUSD(m.PerAsset, s.prices.Change24h); ok {
		resp.Change24hUSD = &delta
	}
	writeJSON(w, http.StatusOK, resp)
}

type realizedResponse struct {
	RealizedBySale map[string]float64 `json:"realizedBySale"`
	BuyProfit      map[string]float64 `json:"buyProfit"`
}

// handlePortfolioRealized returns the per-trade display breakdowns. The
// headline realized figure stays with /v1/portfolio/metrics.
func (s *Server) handlePortfolioRealized(w http.ResponseWriter, r *http.Request) {
	trades, err := s.tradeRepo.ListAll(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		fmt.Printf("Error loading trades for realized breakdown: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	writeJSON(w, http.StatusOK, realizedResponse{
		RealizedBySale: portfolio.RealizedBySale(trades),
		BuyProfit:      portfolio.BuyProfitByTrade(trades),
	})
}

// handlePortfolioAvailable reports the sellable quantity of one asset under
// the requested method, with held-aside units broken out.
func (s *Server) handlePortfolioAvailable(w http.ResponseWriter, r *http.Request) {
	asset := r.URL.Query().Get("asset")
	if asset == "" {
		writeError(w, http.StatusBadRequest, "asset query parameter is required")
		return
	}
	method := s.parseMethod(r)

	trades, err := s.tradeRepo.ListAll(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		fmt.Printf("Error loading trades for available balance: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"asset":     asset,
		"method":    string(method),
		"available": portfolio.AvailableQuantity(trades, asset, method),
		"holding":   portfolio.HoldingQuantity(trades, asset),
	})
}
