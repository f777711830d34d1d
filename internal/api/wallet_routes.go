package api

import (
	"fmt"
	"net/http"

	"github.com/mfeld/cointrack-backend/internal/portfolio"
)

type walletBalanceResponse struct {
	Address      string  `json:"address"`
	ChainBalance float64 `json:"chainBalanceEth"`
	LedgerTotal  float64 `json:"ledgerEth"`
	Delta        float64 `json:"deltaEth"`
}

// handleWalletBalance reconciles the watch-only wallet against the ledger's
// ETH position (sellable units plus cold-storage holdings).
func (s *Server) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	if s.wallet == nil {
		writeError(w, http.StatusServiceUnavailable, "wallet reconciliation not configured")
		return
	}

	ctx := r.Context()
	chainBalance, err := s.wallet.ETHBalance(ctx)
	if err != nil {
		fmt.Printf("Error fetching wallet balance: %v\n", err)
		writeError(w, http.StatusBadGateway, "failed to fetch chain balance")
		return
	}

	trades, err := s.tradeRepo.ListAll(ctx, "")
	if err != nil {
		fmt.Printf("Error loading trades for reconciliation: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	ledgerTotal := portfolio.AvailableQuantity(trades, "ETH", s.method) +
		portfolio.HoldingQuantity(trades, "ETH")

	writeJSON(w, http.StatusOK, walletBalanceResponse{
		Address:      s.wallet.Address().Hex(),
		ChainBalance: chainBalance,
		LedgerTotal:  ledgerTotal,
		Delta:        chainBalance - ledgerTotal,
	})
}
