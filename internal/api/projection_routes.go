package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mfeld/cointrack-backend/internal/models"
	"github.com/mfeld/cointrack-backend/internal/portfolio"
)

type projectionRequest struct {
	Rows    []models.ProjectionRow `json:"rows"`
	Method  string                 `json:"method,omitempty"`
	Account string                 `json:"account,omitempty"`
}

// handleRunProjection evaluates hypothetical trades against the real ledger.
// Nothing is persisted; the synthetic rows live only for this request.
func (s *Server) handleRunProjection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "rows must not be empty")
		return
	}
	for i, row := range req.Rows {
		if !models.ValidType(row.Asset, row.Type) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("row %d: type %q is not valid for asset %q", i, row.Type, row.Asset))
			return
		}
	}

	method := s.method
	if req.Method != "" {
		method = portfolio.ParseMethod(req.Method)
	}

	ctx := r.Context()
	real, err := s.tradeRepo.ListAll(ctx, req.Account)
	if err != nil {
		fmt.Printf("Error loading trades for projection: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	symbols := assetSymbols(real)
	for _, row := range req.Rows {
		if row.Asset != models.USDAsset {
			symbols = append(symbols, row.Asset)
		}
	}
	s.prices.EnsureQuotes(ctx, symbols)

	outcome := portfolio.Project(real, req.Rows, method, s.prices.Price)
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleListProjections(w http.ResponseWriter, r *http.Request) {
	rows, err := s.projectionRepo.List(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		fmt.Printf("Error listing saved projections: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to list projections")
		return
	}
	if rows == nil {
		rows = []models.ProjectionRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleSaveProjections replaces the saved what-if table for one account
// scope. An empty rows array clears it.
func (s *Server) handleSaveProjections(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for i, row := range req.Rows {
		if !models.ValidType(row.Asset, row.Type) {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("row %d: type %q is not valid for asset %q", i, row.Type, row.Asset))
			return
		}
	}

	if err := s.projectionRepo.Replace(r.Context(), req.Account, req.Rows); err != nil {
		fmt.Printf("Error saving projections: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to save projections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": len(req.Rows)})
}
