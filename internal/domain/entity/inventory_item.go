package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vinoteca-hk/cellar-sync/internal/domain"
)

// ItemPricing precios normalizados de un artículo.
// Price/Currency es el precio de exhibición elegido por la regla de prioridad:
// el nivel minorista en HKD manda; si no existe, cae al precio mayorista; si no hay nada, 0 HKD.
type ItemPricing struct {
	TradePrice  decimal.Decimal `json:"tradePrice"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

// ItemLocation existencias de un artículo en una bodega concreta.
// Los campos de dirección pueden quedar vacíos si el enriquecimiento parcial falló.
type ItemLocation struct {
	LocationID        string          `json:"locationId"`
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	City              string          `json:"city"`
	Country           string          `json:"country"`
	Zip               string          `json:"zip"`
	QuantityOnHand    decimal.Decimal `json:"quantityOnHand"`
	QuantityAvailable decimal.Decimal `json:"quantityAvailable"`
}

// ItemMovement si el artículo tuvo salidas en los últimos 12 meses.
// Se puebla en una pasada batch separada; la ausencia en el join remoto significa "sin movimiento".
type ItemMovement struct {
	LastMovementDate  *time.Time `json:"lastMovementDate"`
	MovedLast12Months bool       `json:"movedLast12Months"`
}

// InventoryItem representación canónica de un artículo del catálogo (vino),
// independiente de los nombres de campo del ERP remoto. Clave única: ExternalID.
// Cada sincronización reemplaza el documento completo (upsert), nunca un patch parcial.
type InventoryItem struct {
	ExternalID     int64
	SKU            string // itemid remoto
	Name           string
	Producer       string
	Region         string
	Country        string
	Vintage        string
	Varietal       string
	Classification string
	IsInactive     bool
	Pricing        ItemPricing
	Locations      []ItemLocation
	TotalQuantity  decimal.Decimal // derivado: Σ QuantityAvailable sobre Locations
	Movement       ItemMovement
	LastSynced     time.Time
}

// RecomputeTotal recalcula TotalQuantity desde Locations.
// Debe invocarse tras cualquier mutación de Locations para mantener el invariante.
func (i *InventoryItem) RecomputeTotal() {
	total := decimal.Zero
	for _, loc := range i.Locations {
		total = total.Add(loc.QuantityAvailable)
	}
	i.TotalQuantity = total
}

// Validate valida el registro antes de persistirlo.
// Un fallo aquí es un error por-registro, nunca aborta la corrida.
func (i *InventoryItem) Validate() error {
	if i.ExternalID <= 0 {
		return domain.ErrValidation
	}
	for _, loc := range i.Locations {
		if loc.QuantityOnHand.IsNegative() || loc.QuantityAvailable.IsNegative() {
			return domain.ErrValidation
		}
	}
	return nil
}
