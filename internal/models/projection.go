package models

// ProjectionRow is one hypothetical trade in the what-if table. Rows are
// applied in order, each one second after the previous, so later rows see
// the effect of earlier ones.
type ProjectionRow struct {
	Asset     string  `json:"asset"`
	Type      string  `json:"type"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	AccountID string  `json:"accountId,omitempty"`
}
