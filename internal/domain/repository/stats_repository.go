package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryStats resumen agregado del catálogo sincronizado.
type InventoryStats struct {
	ItemCount      int
	ActiveCount    int
	TotalBottles   decimal.Decimal
	StockValue     decimal.Decimal // Σ precio de exhibición × cantidad disponible
	MovedLast12M   int
	WithoutPricing int
}

// RegionStock existencias agrupadas por región.
type RegionStock struct {
	Region     string
	ItemCount  int
	Bottles    decimal.Decimal
	StockValue decimal.Decimal
}

// OrderStats resumen financiero de órdenes en un período.
type OrderStats struct {
	OrderCount     int
	TotalAmount    decimal.Decimal
	Subtotal       decimal.Decimal
	EstGrossProfit decimal.Decimal
}

// StatsRepository consultas agregadas de solo lectura para reportería.
type StatsRepository interface {
	InventorySummary(ctx context.Context) (InventoryStats, error)
	StockByRegion(ctx context.Context, limit int) ([]RegionStock, error)
	OrderSummary(ctx context.Context, from, to time.Time) (OrderStats, error)
}
