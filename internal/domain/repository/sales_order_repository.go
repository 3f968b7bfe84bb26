package repository

import (
	"context"

	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
)

// OrderFilter filtros del listado de órdenes.
type OrderFilter struct {
	Status string
	Search string // coincidencia parcial sobre número de orden o cliente
	Limit  int
	Offset int
}

// SalesOrderRepository puerto de persistencia para órdenes de venta canónicas.
type SalesOrderRepository interface {
	UpsertByExternalID(ctx context.Context, order *entity.SalesOrder) (*entity.SalesOrder, error)
	GetByExternalID(ctx context.Context, externalID int64) (*entity.SalesOrder, error)
	List(ctx context.Context, f OrderFilter) ([]*entity.SalesOrder, int, error)
	// DistinctItemIDs ids distintos de artículos referenciados por las líneas de todas las órdenes.
	DistinctItemIDs(ctx context.Context) ([]int64, error)
}
