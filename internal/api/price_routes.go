package api

import (
	"fmt"
	"net/http"
)

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	asset := r.PathValue("asset")

	q, err := s.prices.Quote(r.Context(), asset)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no quote available for %q", asset))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	assets, err := s.tradeRepo.Assets(ctx)
	if err != nil {
		fmt.Printf("Error listing ledger assets: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	updated, err := s.prices.RefreshAll(ctx, assets)
	if err != nil {
		fmt.Printf("Error refreshing prices: %v\n", err)
		writeError(w, http.StatusBadGateway, "price refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated, "assets": len(assets)})
}
