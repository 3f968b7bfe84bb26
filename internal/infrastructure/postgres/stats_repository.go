package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo consultas agregadas de solo lectura para la reportería del catálogo
// y las órdenes sincronizadas.
type StatsRepo struct {
	pool *pgxpool.Pool
}

// NewStatsRepository construye el adaptador de reportería.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// InventorySummary totales del catálogo: artículos, botellas, valor de stock
// (precio de exhibición × disponible) y cobertura de la pasada de movimiento.
// COALESCE protege el caso de catálogo vacío.
func (r *StatsRepo) InventorySummary(ctx context.Context) (repository.InventoryStats, error) {
	const query = `
	SELECT
	    COUNT(*)                                                       AS item_count,
	    COUNT(*) FILTER (WHERE NOT is_inactive)                        AS active_count,
	    COALESCE(SUM(total_quantity), 0)                               AS total_bottles,
	    COALESCE(SUM(price * total_quantity), 0)                       AS stock_value,
	    COUNT(*) FILTER (WHERE moved_last_12_months)                   AS moved_last_12m,
	    COUNT(*) FILTER (WHERE price = 0)                              AS without_pricing
	FROM inventory_items`

	var s repository.InventoryStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.ItemCount, &s.ActiveCount, &s.TotalBottles, &s.StockValue, &s.MovedLast12M, &s.WithoutPricing,
	)
	if err != nil {
		return repository.InventoryStats{}, fmt.Errorf("stats.InventorySummary: %w", err)
	}
	return s, nil
}

// StockByRegion existencias agrupadas por región, de mayor a menor stock.
// Los artículos sin región se consolidan en "Sin región".
func (r *StatsRepo) StockByRegion(ctx context.Context, limit int) ([]repository.RegionStock, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
	SELECT
	    COALESCE(NULLIF(region, ''), 'Sin región')   AS region,
	    COUNT(*)                                     AS item_count,
	    COALESCE(SUM(total_quantity), 0)             AS bottles,
	    COALESCE(SUM(price * total_quantity), 0)     AS stock_value
	FROM inventory_items
	WHERE NOT is_inactive
	GROUP BY 1
	ORDER BY bottles DESC
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("stats.StockByRegion: %w", err)
	}
	defer rows.Close()

	var results []repository.RegionStock
	for rows.Next() {
		var row repository.RegionStock
		if err := rows.Scan(&row.Region, &row.ItemCount, &row.Bottles, &row.StockValue); err != nil {
			return nil, fmt.Errorf("stats.StockByRegion scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// OrderSummary totales financieros de las órdenes del período (copiados del
// remoto al sincronizar, aquí solo se agregan).
func (r *StatsRepo) OrderSummary(ctx context.Context, from, to time.Time) (repository.OrderStats, error) {
	const query = `
	SELECT
	    COUNT(*)                               AS order_count,
	    COALESCE(SUM(total_amount), 0)         AS total_amount,
	    COALESCE(SUM(subtotal), 0)             AS subtotal,
	    COALESCE(SUM(est_gross_profit), 0)     AS est_gross_profit
	FROM sales_orders
	WHERE tran_date BETWEEN $1 AND $2`

	var s repository.OrderStats
	err := r.pool.QueryRow(ctx, query, from, to).Scan(
		&s.OrderCount, &s.TotalAmount, &s.Subtotal, &s.EstGrossProfit,
	)
	if err != nil {
		return repository.OrderStats{}, fmt.Errorf("stats.OrderSummary: %w", err)
	}
	return s, nil
}
