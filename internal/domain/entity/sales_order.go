package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vinoteca-hk/cellar-sync/internal/domain"
)

// OrderCustomer cliente de una orden, derivado de la referencia "entity" remota.
// Name ya viene con el prefijo de identificación removido (ver transformación).
type OrderCustomer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderLine línea de una orden de venta. Producer/Region se resuelven con una
// consulta secundaria al artículo referenciado; si falla quedan vacíos.
type OrderLine struct {
	ItemID            int64           `json:"itemId"`
	SKU               string          `json:"sku"`
	Description       string          `json:"description"`
	Producer          string          `json:"producer"`
	Region            string          `json:"region"`
	Quantity          decimal.Decimal `json:"quantity"`
	Rate              decimal.Decimal `json:"rate"`
	Amount            decimal.Decimal `json:"amount"`
	QuantityFulfilled decimal.Decimal `json:"quantityFulfilled"`
	QuantityBilled    decimal.Decimal `json:"quantityBilled"`
}

// SalesOrder representación canónica de una orden de venta. Clave única: ExternalID.
// Los totales se copian tal cual del remoto, no se recalculan localmente.
type SalesOrder struct {
	ExternalID     int64
	OrderNumber    string // tranid remoto
	Status         string
	TranDate       *time.Time
	Customer       OrderCustomer
	Items          []OrderLine
	Subtotal       decimal.Decimal
	TotalAmount    decimal.Decimal
	EstGrossProfit decimal.Decimal
	LastSynced     time.Time
}

// Validate valida la orden antes de persistirla.
func (o *SalesOrder) Validate() error {
	if o.ExternalID <= 0 {
		return domain.ErrValidation
	}
	return nil
}
