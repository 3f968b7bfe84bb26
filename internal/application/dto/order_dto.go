package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
)

// OrderResponse salida de una orden de venta sincronizada.
type OrderResponse struct {
	ExternalID     int64                `json:"external_id"`
	OrderNumber    string               `json:"order_number"`
	Status         string               `json:"status"`
	TranDate       *time.Time           `json:"tran_date"`
	Customer       entity.OrderCustomer `json:"customer"`
	Items          []entity.OrderLine   `json:"items"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	EstGrossProfit decimal.Decimal      `json:"est_gross_profit"`
	LastSynced     time.Time            `json:"last_synced"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ToOrderResponse mapea la entidad canónica a su representación HTTP.
func ToOrderResponse(o *entity.SalesOrder) *OrderResponse {
	if o == nil {
		return nil
	}
	return &OrderResponse{
		ExternalID:     o.ExternalID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		TranDate:       o.TranDate,
		Customer:       o.Customer,
		Items:          o.Items,
		Subtotal:       o.Subtotal,
		TotalAmount:    o.TotalAmount,
		EstGrossProfit: o.EstGrossProfit,
		LastSynced:     o.LastSynced,
	}
}
