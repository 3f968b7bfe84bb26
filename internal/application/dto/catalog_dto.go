package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
)

// ItemResponse salida de un artículo del catálogo sincronizado.
type ItemResponse struct {
	ExternalID        int64                 `json:"external_id"`
	SKU               string                `json:"sku"`
	Name              string                `json:"name"`
	Producer          string                `json:"producer"`
	Region            string                `json:"region"`
	Country           string                `json:"country"`
	Vintage           string                `json:"vintage"`
	Varietal          string                `json:"varietal"`
	Classification    string                `json:"classification"`
	IsInactive        bool                  `json:"is_inactive"`
	Pricing           entity.ItemPricing    `json:"pricing"`
	Locations         []entity.ItemLocation `json:"locations"`
	TotalQuantity     decimal.Decimal       `json:"total_quantity"`
	LastMovementDate  *time.Time            `json:"last_movement_date"`
	MovedLast12Months bool                  `json:"moved_last_12_months"`
	LastSynced        time.Time             `json:"last_synced"`
}

// ItemListResponse lista paginada de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToItemResponse mapea la entidad canónica a su representación HTTP.
func ToItemResponse(i *entity.InventoryItem) *ItemResponse {
	if i == nil {
		return nil
	}
	return &ItemResponse{
		ExternalID:        i.ExternalID,
		SKU:               i.SKU,
		Name:              i.Name,
		Producer:          i.Producer,
		Region:            i.Region,
		Country:           i.Country,
		Vintage:           i.Vintage,
		Varietal:          i.Varietal,
		Classification:    i.Classification,
		IsInactive:        i.IsInactive,
		Pricing:           i.Pricing,
		Locations:         i.Locations,
		TotalQuantity:     i.TotalQuantity,
		LastMovementDate:  i.Movement.LastMovementDate,
		MovedLast12Months: i.Movement.MovedLast12Months,
		LastSynced:        i.LastSynced,
	}
}
