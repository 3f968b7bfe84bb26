package usecase

import (
	"context"
	"time"

	"github.com/vinoteca-hk/cellar-sync/internal/application/dto"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
)

// StatsUseCase reportería agregada sobre lo ya sincronizado.
type StatsUseCase struct {
	repo repository.StatsRepository
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(repo repository.StatsRepository) *StatsUseCase {
	return &StatsUseCase{repo: repo}
}

// Inventory resumen agregado del catálogo.
func (uc *StatsUseCase) Inventory(ctx context.Context) (*dto.InventoryStatsResponse, error) {
	s, err := uc.repo.InventorySummary(ctx)
	if err != nil {
		return nil, err
	}
	out := dto.ToInventoryStatsResponse(s)
	return &out, nil
}

// Regions existencias por región, de mayor a menor stock.
func (uc *StatsUseCase) Regions(ctx context.Context, limit int) ([]dto.RegionStockResponse, error) {
	rows, err := uc.repo.StockByRegion(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.ToRegionStockResponses(rows), nil
}

// Orders resumen financiero de órdenes del período [from, to].
// Por defecto: los últimos 30 días.
func (uc *StatsUseCase) Orders(ctx context.Context, from, to time.Time) (*dto.OrderStatsResponse, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	s, err := uc.repo.OrderSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.OrderStatsResponse{
		From:           from.Format("2006-01-02"),
		To:             to.Format("2006-01-02"),
		OrderCount:     s.OrderCount,
		TotalAmount:    s.TotalAmount,
		Subtotal:       s.Subtotal,
		EstGrossProfit: s.EstGrossProfit,
	}, nil
}
