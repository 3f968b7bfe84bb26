package sync

import (
	"time"

	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
)

// Transformación pura de registros remotos al esquema canónico.
// Sin red ni acceso al store: la ausencia de cualquier campo produce el valor
// cero del canónico, nunca un error.

// TransformInventoryItem mapea un bundle de artículo a la entidad canónica.
// TotalQuantity se recalcula siempre desde las ubicaciones enriquecidas.
func TransformInventoryItem(b *ItemBundle, now time.Time) *entity.InventoryItem {
	item := &entity.InventoryItem{
		ExternalID:     b.ID,
		SKU:            b.Base.Str("itemId"),
		Name:           b.Base.Str("displayName"),
		Producer:       b.Base.Str("custitem_producer"),
		Region:         b.Base.Str("custitem_wine_region"),
		Country:        b.Base.Str("custitem_wine_country"),
		Vintage:        b.Base.Str("custitem_vintage"),
		Varietal:       b.Base.Str("custitem_varietal"),
		Classification: b.Base.Str("custitem_classification"),
		IsInactive:     b.Inactive,
		Pricing: entity.ItemPricing{
			TradePrice:  b.Pricing.Trade,
			RetailPrice: b.Pricing.Retail,
			Price:       b.Pricing.Price,
			Currency:    b.Pricing.Currency,
		},
		// Sin movimiento hasta que la pasada batch lo enriquezca.
		Movement:   entity.ItemMovement{},
		LastSynced: now,
	}
	if item.Name == "" {
		item.Name = item.SKU
	}
	item.Locations = make([]entity.ItemLocation, 0, len(b.Locations))
	for _, loc := range b.Locations {
		item.Locations = append(item.Locations, entity.ItemLocation{
			LocationID:        loc.LocationID,
			Name:              loc.Name,
			Address:           loc.Address,
			City:              loc.City,
			Country:           loc.Country,
			Zip:               loc.Zip,
			QuantityOnHand:    loc.OnHand,
			QuantityAvailable: loc.Available,
		})
	}
	item.RecomputeTotal()
	return item
}

// TransformSalesOrder mapea un bundle de orden a la entidad canónica.
// Los totales se copian tal cual del remoto; no se recalculan.
func TransformSalesOrder(b *OrderBundle, now time.Time) *entity.SalesOrder {
	order := &entity.SalesOrder{
		ExternalID:  b.ID,
		OrderNumber: b.Base.Str("tranId"),
		Status:      b.Base.Str("status.refName"),
		TranDate:    ParseISODate(b.Base.Str("tranDate")),
		Customer: entity.OrderCustomer{
			ID:    b.Customer.ID,
			Name:  StripCustomerPrefix(b.Customer.RawName),
			Email: b.Customer.Email,
		},
		Subtotal:       b.Base.Dec("subtotal"),
		TotalAmount:    b.Base.Dec("total"),
		EstGrossProfit: b.Base.Dec("estGrossProfit"),
		LastSynced:     now,
	}
	order.Items = make([]entity.OrderLine, 0, len(b.Lines))
	for _, line := range b.Lines {
		order.Items = append(order.Items, entity.OrderLine{
			ItemID:            line.ItemID,
			SKU:               line.SKU,
			Description:       line.Description,
			Producer:          line.Producer,
			Region:            line.Region,
			Quantity:          line.Quantity,
			Rate:              line.Rate,
			Amount:            line.Amount,
			QuantityFulfilled: line.Fulfilled,
			QuantityBilled:    line.Billed,
		})
	}
	return order
}

// ParseDMYDate parsea fechas DD/MM/YYYY del feed de movimientos.
// Vacío o malformado -> nil, nunca panic.
func ParseDMYDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return nil
	}
	return &t
}

// ParseISODate parsea fechas ISO ("2006-01-02" o RFC3339). Malformado -> nil.
func ParseISODate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
