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

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

const orderColumns = `external_id, order_number, status, tran_date, customer_id, customer_name,
	customer_email, items, subtotal, total_amount, est_gross_profit, last_synced`

// SalesOrderRepo implementación del puerto SalesOrderRepository sobre PostgreSQL.
// Las líneas viven como JSONB; el documento se reemplaza completo en cada sync.
type SalesOrderRepo struct {
	pool *pgxpool.Pool
}

// NewSalesOrderRepository construye el adaptador de persistencia de órdenes.
func NewSalesOrderRepository(pool *pgxpool.Pool) *SalesOrderRepo {
	return &SalesOrderRepo{pool: pool}
}

// UpsertByExternalID inserta o reemplaza la orden completa por clave externa. Idempotente.
func (r *SalesOrderRepo) UpsertByExternalID(ctx context.Context, order *entity.SalesOrder) (*entity.SalesOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("serializar líneas: %w", err)
	}

	query := `
		INSERT INTO sales_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_id) DO UPDATE SET
			order_number = EXCLUDED.order_number,
			status = EXCLUDED.status,
			tran_date = EXCLUDED.tran_date,
			customer_id = EXCLUDED.customer_id,
			customer_name = EXCLUDED.customer_name,
			customer_email = EXCLUDED.customer_email,
			items = EXCLUDED.items,
			subtotal = EXCLUDED.subtotal,
			total_amount = EXCLUDED.total_amount,
			est_gross_profit = EXCLUDED.est_gross_profit,
			last_synced = EXCLUDED.last_synced`
	_, err = r.pool.Exec(ctx, query,
		order.ExternalID, order.OrderNumber, order.Status, order.TranDate,
		order.Customer.ID, order.Customer.Name, order.Customer.Email,
		items, order.Subtotal, order.TotalAmount, order.EstGrossProfit, order.LastSynced,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert sales order: %w", err)
	}
	return order, nil
}

// GetByExternalID obtiene una orden por su clave externa; (nil, nil) si no existe.
func (r *SalesOrderRepo) GetByExternalID(ctx context.Context, externalID int64) (*entity.SalesOrder, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM sales_orders WHERE external_id = $1`, externalID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	return order, nil
}

// List lista órdenes con filtros y paginación; devuelve además el total.
func (r *SalesOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.SalesOrder, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (order_number ILIKE $%d OR customer_name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales_orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales orders: %w", err)
	}

	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + orderColumns + ` FROM sales_orders` + where +
		fmt.Sprintf(` ORDER BY tran_date DESC NULLS LAST, external_id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.SalesOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sales order: %w", err)
		}
		list = append(list, order)
	}
	return list, total, rows.Err()
}

// DistinctItemIDs ids distintos de artículos referenciados por las líneas de todas las órdenes.
func (r *SalesOrderRepo) DistinctItemIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT (line->>'itemId')::BIGINT AS item_id
		FROM sales_orders, jsonb_array_elements(items) AS line
		WHERE line->>'itemId' IS NOT NULL AND (line->>'itemId')::BIGINT > 0
		ORDER BY item_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct item ids: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOrder(row rowScanner) (*entity.SalesOrder, error) {
	var (
		order entity.SalesOrder
		items []byte
	)
	if err := row.Scan(
		&order.ExternalID, &order.OrderNumber, &order.Status, &order.TranDate,
		&order.Customer.ID, &order.Customer.Name, &order.Customer.Email,
		&items, &order.Subtotal, &order.TotalAmount, &order.EstGrossProfit, &order.LastSynced,
	); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("deserializar líneas: %w", err)
		}
	}
	return &order, nil
}
