package usecase

import (
	"context"

	"github.com/vinoteca-hk/cellar-sync/internal/application/dto"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
)

// CatalogUseCase lectura del catálogo local sincronizado. Solo consultas:
// las escrituras llegan únicamente por el pipeline de sincronización.
type CatalogUseCase struct {
	repo repository.InventoryItemRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(repo repository.InventoryItemRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo}
}

// List lista artículos con filtros y paginación.
func (uc *CatalogUseCase) List(ctx context.Context, f repository.ItemFilter) (*dto.ItemListResponse, error) {
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
	items := make([]dto.ItemResponse, 0, len(list))
	for _, i := range list {
		items = append(items, *dto.ToItemResponse(i))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// GetByExternalID obtiene un artículo; (nil, nil) si no existe.
func (uc *CatalogUseCase) GetByExternalID(ctx context.Context, externalID int64) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return dto.ToItemResponse(item), nil
}
