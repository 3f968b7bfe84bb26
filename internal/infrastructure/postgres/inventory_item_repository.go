package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `external_id, sku, name, producer, region, country, vintage, varietal,
	classification, is_inactive, trade_price, retail_price, price, currency, locations,
	total_quantity, last_movement_date, moved_last_12_months, last_synced`

// InventoryItemRepo implementación del puerto InventoryItemRepository sobre PostgreSQL.
// Las ubicaciones viven como JSONB dentro de la fila: el documento canónico se
// reemplaza completo en cada sincronización, nunca por partes.
type InventoryItemRepo struct {
	pool *pgxpool.Pool
}

// NewInventoryItemRepository construye el adaptador de persistencia del catálogo.
func NewInventoryItemRepository(pool *pgxpool.Pool) *InventoryItemRepo {
	return &InventoryItemRepo{pool: pool}
}

// UpsertByExternalID inserta o reemplaza el documento completo por clave externa.
// Idempotente: repetir la misma escritura deja la fila idéntica. Valida antes
// de escribir; un registro inválido es un error por-registro, no corrupción.
func (r *InventoryItemRepo) UpsertByExternalID(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.RecomputeTotal() // el invariante se sostiene también si el llamador olvidó recalcular

	locations, err := json.Marshal(item.Locations)
	if err != nil {
		return nil, fmt.Errorf("serializar ubicaciones: %w", err)
	}

	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (external_id) DO UPDATE SET
			sku = EXCLUDED.sku,
			name = EXCLUDED.name,
			producer = EXCLUDED.producer,
			region = EXCLUDED.region,
			country = EXCLUDED.country,
			vintage = EXCLUDED.vintage,
			varietal = EXCLUDED.varietal,
			classification = EXCLUDED.classification,
			is_inactive = EXCLUDED.is_inactive,
			trade_price = EXCLUDED.trade_price,
			retail_price = EXCLUDED.retail_price,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			locations = EXCLUDED.locations,
			total_quantity = EXCLUDED.total_quantity,
			last_movement_date = EXCLUDED.last_movement_date,
			moved_last_12_months = EXCLUDED.moved_last_12_months,
			last_synced = EXCLUDED.last_synced`
	_, err = r.pool.Exec(ctx, query,
		item.ExternalID, item.SKU, item.Name, item.Producer, item.Region, item.Country,
		item.Vintage, item.Varietal, item.Classification, item.IsInactive,
		item.Pricing.TradePrice, item.Pricing.RetailPrice, item.Pricing.Price, item.Pricing.Currency,
		locations, item.TotalQuantity, item.Movement.LastMovementDate, item.Movement.MovedLast12Months,
		item.LastSynced,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert inventory item: %w", err)
	}
	return item, nil
}

// GetByExternalID obtiene un artículo por su clave externa; (nil, nil) si no existe.
func (r *InventoryItemRepo) GetByExternalID(ctx context.Context, externalID int64) (*entity.InventoryItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE external_id = $1`, externalID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// List lista artículos con filtros y paginación; devuelve además el total.
func (r *InventoryItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.Producer != "" {
		args = append(args, f.Producer)
		where += fmt.Sprintf(` AND producer = $%d`, len(args))
	}
	if f.Region != "" {
		args = append(args, f.Region)
		where += fmt.Sprintf(` AND region = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (sku ILIKE $%d OR name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory items: %w", err)
	}

	orderBy := "name"
	switch f.OrderBy {
	case "vintage", "total_quantity", "last_synced":
		orderBy = f.OrderBy
	}
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items` + where +
		fmt.Sprintf(` ORDER BY %s LIMIT $%d OFFSET $%d`, orderBy, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, item)
	}
	return list, total, rows.Err()
}

// ListExternalIDs ids almacenados en orden ascendente, paginado.
func (r *InventoryItemRepo) ListExternalIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT external_id FROM inventory_items ORDER BY external_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list external ids: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan external id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetMovement fija el estado de movimiento sin tocar el resto del documento.
func (r *InventoryItemRepo) SetMovement(ctx context.Context, externalID int64, m entity.ItemMovement) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE inventory_items SET last_movement_date = $2, moved_last_12_months = $3 WHERE external_id = $1`,
		externalID, m.LastMovementDate, m.MovedLast12Months,
	)
	if err != nil {
		return fmt.Errorf("set movement: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*entity.InventoryItem, error) {
	var (
		item      entity.InventoryItem
		locations []byte
	)
	if err := row.Scan(
		&item.ExternalID, &item.SKU, &item.Name, &item.Producer, &item.Region, &item.Country,
		&item.Vintage, &item.Varietal, &item.Classification, &item.IsInactive,
		&item.Pricing.TradePrice, &item.Pricing.RetailPrice, &item.Pricing.Price, &item.Pricing.Currency,
		&locations, &item.TotalQuantity, &item.Movement.LastMovementDate, &item.Movement.MovedLast12Months,
		&item.LastSynced,
	); err != nil {
		return nil, err
	}
	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &item.Locations); err != nil {
			return nil, fmt.Errorf("deserializar ubicaciones: %w", err)
		}
	}
	return &item, nil
}
