package repository

import (
	"context"

	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
)

// ItemFilter filtros del listado de artículos.
type ItemFilter struct {
	Producer string
	Region   string
	Search   string // coincidencia parcial sobre SKU o nombre
	OrderBy  string // "name" | "vintage" | "total_quantity" | "last_synced"
	Limit    int
	Offset   int
}

// InventoryItemRepository puerto de persistencia para artículos canónicos.
type InventoryItemRepository interface {
	// UpsertByExternalID inserta o reemplaza el documento completo por clave externa.
	// Idempotente: N llamadas con el mismo registro dejan el mismo estado que una.
	UpsertByExternalID(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error)
	GetByExternalID(ctx context.Context, externalID int64) (*entity.InventoryItem, error)
	List(ctx context.Context, f ItemFilter) ([]*entity.InventoryItem, int, error)
	// ListExternalIDs ids almacenados en orden ascendente, paginado (para pasadas batch).
	ListExternalIDs(ctx context.Context, limit, offset int) ([]int64, error)
	// SetMovement fija el estado de movimiento de un artículo ya almacenado.
	SetMovement(ctx context.Context, externalID int64, m entity.ItemMovement) error
}
