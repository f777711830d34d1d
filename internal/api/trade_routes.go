package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mfeld/cointrack-backend/internal/models"
)

type tradeRequest struct {
	Date      *time.Time `json:"date,omitempty"`
	Asset     string     `json:"asset"`
	Type      string     `json:"type"`
	Price     float64    `json:"price"`
	Quantity  float64    `json:"quantity"`
	Exchange  string     `json:"exchange"`
	OrderType string     `json:"orderType"`
	AccountID string     `json:"accountId"`
}

func (req tradeRequest) toTrade() models.Trade {
	t := models.Trade{
		Asset:     req.Asset,
		Type:      req.Type,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Exchange:  req.Exchange,
		OrderType: req.OrderType,
		AccountID: req.AccountID,
	}
	if req.Date != nil {
		t.Date = *req.Date
	}
	return t
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)
	account := r.URL.Query().Get("account")

	trades, err := s.tradeRepo.ListRecent(r.Context(), account, limit)
	if err != nil {
		fmt.Printf("Error fetching trades: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trades")
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := s.tradeRepo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		fmt.Printf("Error fetching trade: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trade")
		return
	}
	if trade == nil {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	existing, err := s.tradeRepo.ListAll(ctx, "")
	if err != nil {
		fmt.Printf("Error loading ledger for validation: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}

	trade := req.toTrade()
	if err := s.validator.Prepare(ctx, existing, &trade); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	recorded, err := s.tradeRepo.Insert(ctx, &trade)
	if err != nil {
		fmt.Printf("Error inserting trade: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to record trade")
		return
	}

	if s.notifier != nil && s.notifier.Enabled() {
		go s.notifier.TradeRecorded(recorded)
	}
	writeJSON(w, http.StatusCreated, recorded)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	current, err := s.tradeRepo.GetByID(ctx, id)
	if err != nil {
		fmt.Printf("Error fetching trade %s: %v\n", id, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trade")
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}

	// Validate against the ledger as it would look without this entry, so
	// an edit cannot trip over its own previous balance contribution.
	all, err := s.tradeRepo.ListAll(ctx, "")
	if err != nil {
		fmt.Printf("Error loading ledger for validation: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	others := make([]models.Trade, 0, len(all))
	for _, t := range all {
		if t.ID != id {
			others = append(others, t)
		}
	}

	trade := req.toTrade()
	trade.ID = id
	if trade.Date.IsZero() {
		trade.Date = current.Date
	}
	if err := s.validator.Prepare(ctx, others, &trade); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.tradeRepo.Update(ctx, &trade)
	if err != nil {
		fmt.Printf("Error updating trade %s: %v\n", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update trade")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.tradeRepo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
