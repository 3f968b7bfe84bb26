package dto

import (
	"github.com/shopspring/decimal"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
)

// InventoryStatsResponse resumen agregado del catálogo.
type InventoryStatsResponse struct {
	ItemCount      int             `json:"item_count"`
	ActiveCount    int             `json:"active_count"`
	TotalBottles   decimal.Decimal `json:"total_bottles"`
	StockValue     decimal.Decimal `json:"stock_value"`
	MovedLast12M   int             `json:"moved_last_12m"`
	WithoutPricing int             `json:"without_pricing"`
}

// RegionStockResponse existencias por región.
type RegionStockResponse struct {
	Region     string          `json:"region"`
	ItemCount  int             `json:"item_count"`
	Bottles    decimal.Decimal `json:"bottles"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// OrderStatsResponse resumen financiero de órdenes en un período.
type OrderStatsResponse struct {
	From           string          `json:"from"`
	To             string          `json:"to"`
	OrderCount     int             `json:"order_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	EstGrossProfit decimal.Decimal `json:"est_gross_profit"`
}

// ToInventoryStatsResponse mapea el agregado del repositorio a su salida HTTP.
func ToInventoryStatsResponse(s repository.InventoryStats) InventoryStatsResponse {
	return InventoryStatsResponse{
		ItemCount:      s.ItemCount,
		ActiveCount:    s.ActiveCount,
		TotalBottles:   s.TotalBottles,
		StockValue:     s.StockValue,
		MovedLast12M:   s.MovedLast12M,
		WithoutPricing: s.WithoutPricing,
	}
}

// ToRegionStockResponses mapea las filas del agregado por región.
func ToRegionStockResponses(rows []repository.RegionStock) []RegionStockResponse {
	out := make([]RegionStockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, RegionStockResponse{
			Region:     r.Region,
			ItemCount:  r.ItemCount,
			Bottles:    r.Bottles,
			StockValue: r.StockValue,
		})
	}
	return out
}
