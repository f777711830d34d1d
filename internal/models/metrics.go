package models

import "time"

// Lot is a batch of units acquired at one unit cost, tracked for FIFO/LIFO
// consumption order. Lots live only inside a single cost-basis computation;
// they are never persisted.
type Lot struct {
	Quantity    float64   `json:"quantity"`
	CostPerUnit float64   `json:"costPerUnit"`
	TradeID     string    `json:"tradeId"`
	Date        time.Time `json:"date"`
}

// AssetMetrics is the valuation snapshot for one crypto asset.
// Price is nil when no quote was available; in that case CurrentValue falls
// back to CostBasis.
type AssetMetrics struct {
	UnitsHeld     float64  `json:"unitsHeld"`
	HoldingQty    float64  `json:"holdingQty"`
	Price         *float64 `json:"price"`
	CurrentValue  float64  `json:"currentValue"`
	CostBasis     float64  `json:"costBasis"`
	UnrealizedPnL float64  `json:"unrealizedPnl"`
	RealizedPnL   float64  `json:"realizedPnl"`
	LifetimePnL   float64  `json:"lifetimePnl"`
	ROIPct        float64  `json:"roiPct"`
}

// PortfolioMetrics is the aggregate valuation snapshot across all assets
// plus USD cash. ROIOnCostPct is nil unless the portfolio has a positive
// asset cost basis (it is the fallback ROI for portfolios funded without
// fiat deposits).
type PortfolioMetrics struct {
	PerAsset          map[string]AssetMetrics `json:"perAsset"`
	USDBalance        float64                 `json:"usdBalance"`
	TotalValue        float64                 `json:"totalValue"`
	TotalExternalCash float64                 `json:"totalExternalCash"`
	TotalCostBasis    float64                 `json:"totalCostBasisAssets"`
	RealizedPnL       float64                 `json:"realizedPnl"`
	UnrealizedPnL     float64                 `json:"unrealizedPnl"`
	TotalPnL          float64                 `json:"totalPnl"`
	ROIPct            float64                 `json:"roiPct"`
	ROIOnCostPct      *float64                `json:"roiOnCostPct"`
}
