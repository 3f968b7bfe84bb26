package usecase

import (
	"context"

	"github.com/vinoteca-hk/cellar-sync/internal/application/dto"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
)

// OrderUseCase lectura de las órdenes de venta sincronizadas.
type OrderUseCase struct {
	repo repository.SalesOrderRepository
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(repo repository.SalesOrderRepository) *OrderUseCase {
	return &OrderUseCase{repo: repo}
}

// List lista órdenes con filtros y paginación.
func (uc *OrderUseCase) List(ctx context.Context, f repository.OrderFilter) (*dto.OrderListResponse, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *dto.ToOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// GetByExternalID obtiene una orden; (nil, nil) si no existe.
func (uc *OrderUseCase) GetByExternalID(ctx context.Context, externalID int64) (*dto.OrderResponse, error) {
	order, err := uc.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	return dto.ToOrderResponse(order), nil
}
