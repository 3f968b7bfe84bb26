package sync

import (
	"context"
	"fmt"
	"strings"
	sys "sync"

	"github.com/shopspring/decimal"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

// Nombres exactos de los niveles de precio del ERP remoto.
// WLP es el precio mayorista base; LPCP es el minorista en HKD y, cuando existe,
// manda como precio de exhibición.
const (
	priceLevelTrade  = "WLP (Base)"
	priceLevelRetail = "LPCP (HKD)"
	defaultCurrency  = "HKD"
)

// fetchGroupSize tamaño de los grupos concurrentes de sub-consultas.
// Reduce la secuenciación en el código, no el paralelismo real: todas las
// llamadas siguen serializadas por la cola del cliente.
const fetchGroupSize = 3

// PricingInfo precios resueltos del fan-out de niveles de precio.
type PricingInfo struct {
	Trade    decimal.Decimal
	Retail   decimal.Decimal
	Price    decimal.Decimal
	Currency string
}

// PriceLevel un nivel de precio devuelto por el remoto.
type PriceLevel struct {
	Name   string
	Amount decimal.Decimal
}

// LocationInfo existencias y dirección de una ubicación enriquecida.
type LocationInfo struct {
	LocationID string
	Name       string
	Address    string
	City       string
	Country    string
	Zip        string
	OnHand     decimal.Decimal
	Available  decimal.Decimal
}

// ItemBundle registro base de un artículo más sus enriquecimientos.
type ItemBundle struct {
	ID        int64
	Base      Payload
	Inactive  bool
	Pricing   PricingInfo
	Locations []LocationInfo
}

// LineInfo línea de orden con el productor/región resueltos del artículo referenciado.
type LineInfo struct {
	ItemID      int64
	SKU         string
	Description string
	Producer    string
	Region      string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
	Fulfilled   decimal.Decimal
	Billed      decimal.Decimal
}

// CustomerInfo cliente crudo de la orden (el nombre aún trae el prefijo remoto).
type CustomerInfo struct {
	ID      int64
	RawName string
	Email   string
}

// OrderBundle registro base de una orden más sus enriquecimientos.
type OrderBundle struct {
	ID       int64
	Base     Payload
	Customer CustomerInfo
	Lines    []LineInfo
}

// Fetcher arma el registro remoto completo de un id: registro base más el
// fan-out de enriquecimiento (precios, ubicaciones, direcciones, artículos de
// línea). Ningún fallo de sub-consulta escapa como error fatal: o devuelve un
// registro usable (quizá parcialmente enriquecido) o un error que el
// orquestador registra y salta.
type Fetcher struct {
	up           Upstream
	maxLocations int
	log          *logger.Logger
}

// NewFetcher construye el fetcher. maxLocations acota el costo por registro.
func NewFetcher(up Upstream, maxLocations int, log *logger.Logger) *Fetcher {
	if maxLocations <= 0 {
		maxLocations = 50
	}
	return &Fetcher{up: up, maxLocations: maxLocations, log: log}
}

// FetchInventoryItem trae el registro base y, si el artículo está activo, el
// enriquecimiento de precios y ubicaciones. Un artículo inactivo corta en seco:
// no necesita precio ni detalle de stock, así que se ahorran ambos fan-outs.
func (f *Fetcher) FetchInventoryItem(ctx context.Context, id int64) (*ItemBundle, error) {
	base, err := f.up.GetRecord(ctx, KindInventoryItem, id)
	if err != nil {
		return nil, fmt.Errorf("registro base %d: %w", id, err)
	}

	b := &ItemBundle{ID: id, Base: base}
	if base.Bool("isInactive") {
		b.Inactive = true
		b.Pricing = PricingInfo{Currency: defaultCurrency}
		return b, nil
	}

	b.Pricing = f.fetchPricing(ctx, base)
	b.Locations = f.fetchLocations(ctx, id, base)
	return b, nil
}

// fetchPricing sigue la referencia de lista de precios y trae el detalle de
// cada nivel (una llamada por nivel). Nunca falla: sin datos -> 0 HKD.
func (f *Fetcher) fetchPricing(ctx context.Context, base Payload) PricingInfo {
	ref := base.Ref("price")
	if ref.Link == "" {
		return PricingInfo{Currency: defaultCurrency}
	}

	list, err := f.up.GetLink(ctx, ref.Link)
	if err != nil {
		f.log.Warn().Err(err).Msg("lista de precios inaccesible, precio por defecto")
		return PricingInfo{Currency: defaultCurrency}
	}

	entries := list.Items("items")
	levels := make([]PriceLevel, len(entries))
	f.runGrouped(len(entries), func(i int) {
		links := entries[i].Items("links")
		if len(links) == 0 {
			return
		}
		detail, err := f.up.GetLink(ctx, links[0].Str("href"))
		if err != nil {
			f.log.Warn().Err(err).Msg("detalle de nivel de precio inaccesible")
			return
		}
		levels[i] = PriceLevel{
			Name:   detail.Ref("priceLevel").Name,
			Amount: detail.Dec("price"),
		}
	})
	return SelectPricing(levels)
}

// SelectPricing aplica la regla de prioridad sobre los niveles devueltos:
//   - "WLP (Base)" se registra como precio mayorista.
//   - "LPCP (HKD)" se registra como minorista y pasa a ser el precio de
//     exhibición en HKD, por encima de cualquier mayorista ya elegido.
//   - Sin LPCP, el mayorista queda como precio de exhibición.
//   - Sin datos: 0 HKD.
//
// Corta el escaneo en cuanto ambos niveles están resueltos.
func SelectPricing(levels []PriceLevel) PricingInfo {
	p := PricingInfo{Currency: defaultCurrency}
	var haveTrade, haveRetail bool
	for _, lv := range levels {
		switch lv.Name {
		case priceLevelTrade:
			p.Trade = lv.Amount
			haveTrade = true
		case priceLevelRetail:
			p.Retail = lv.Amount
			haveRetail = true
		}
		if haveTrade && haveRetail {
			break
		}
	}
	if haveRetail {
		p.Price = p.Retail
	} else if haveTrade {
		p.Price = p.Trade
	}
	return p
}

// fetchLocations sigue la referencia de ubicaciones y, por cada una, trae el
// detalle de existencias, el registro de la bodega y su dirección postal
// (tres viajes anidados por ubicación). Una dirección que falla no descarta
// la ubicación: las cantidades entran con dirección vacía.
func (f *Fetcher) fetchLocations(ctx context.Context, id int64, base Payload) []LocationInfo {
	ref := base.Ref("locations")
	if ref.Link == "" {
		return nil
	}

	list, err := f.up.GetLink(ctx, ref.Link)
	if err != nil {
		f.log.Warn().Err(err).Int64("item", id).Msg("lista de ubicaciones inaccesible")
		return nil
	}

	entries := list.Items("items")
	if len(entries) > f.maxLocations {
		f.log.Warn().
			Int64("item", id).
			Int("ubicaciones", len(entries)).
			Int("techo", f.maxLocations).
			Msg("ubicaciones truncadas por el techo configurado")
		entries = entries[:f.maxLocations]
	}

	out := make([]*LocationInfo, len(entries))
	f.runGrouped(len(entries), func(i int) {
		out[i] = f.fetchOneLocation(ctx, entries[i])
	})

	locations := make([]LocationInfo, 0, len(out))
	for _, loc := range out {
		if loc != nil {
			locations = append(locations, *loc)
		}
	}
	return locations
}

// fetchOneLocation detalle -> bodega -> dirección. nil solo si ni las
// cantidades pudieron leerse.
func (f *Fetcher) fetchOneLocation(ctx context.Context, entry Payload) *LocationInfo {
	links := entry.Items("links")
	if len(links) == 0 {
		return nil
	}
	detail, err := f.up.GetLink(ctx, links[0].Str("href"))
	if err != nil {
		f.log.Warn().Err(err).Msg("detalle de ubicación inaccesible")
		return nil
	}

	locRef := detail.Ref("location")
	loc := &LocationInfo{
		LocationID: locRef.IDString(),
		Name:       locRef.Name,
		OnHand:     detail.Dec("quantityOnHand"),
		Available:  detail.Dec("quantityAvailable"),
	}

	if locRef.Link == "" {
		return loc
	}
	warehouse, err := f.up.GetLink(ctx, locRef.Link)
	if err != nil {
		f.log.Warn().Err(err).Str("ubicacion", loc.LocationID).Msg("bodega inaccesible, dirección vacía")
		return loc
	}
	addrRef := warehouse.Ref("mainAddress")
	if addrRef.Link == "" {
		return loc
	}
	addr, err := f.up.GetLink(ctx, addrRef.Link)
	if err != nil {
		f.log.Warn().Err(err).Str("ubicacion", loc.LocationID).Msg("dirección inaccesible, queda vacía")
		return loc
	}
	loc.Address = addr.Str("addr1")
	loc.City = addr.Str("city")
	loc.Country = addr.Str("country")
	loc.Zip = addr.Str("zip")
	return loc
}

// FetchSalesOrder trae la orden con sublistas expandidas y resuelve
// productor/región de cada línea consultando el artículo referenciado.
func (f *Fetcher) FetchSalesOrder(ctx context.Context, id int64) (*OrderBundle, error) {
	base, err := f.up.GetRecord(ctx, KindSalesOrder, id)
	if err != nil {
		return nil, fmt.Errorf("orden base %d: %w", id, err)
	}

	entityRef := base.Ref("entity")
	b := &OrderBundle{
		ID:   id,
		Base: base,
		Customer: CustomerInfo{
			ID:      entityRef.ID,
			RawName: entityRef.Name,
			Email:   base.Str("email"),
		},
	}

	entries := base.Items("item.items")
	lines := make([]LineInfo, len(entries))
	f.runGrouped(len(entries), func(i int) {
		lines[i] = f.fetchLine(ctx, entries[i])
	})
	b.Lines = lines
	return b, nil
}

// fetchLine arma una línea y sigue el vínculo al artículo para leer
// productor y región; si falla, esos campos quedan vacíos.
func (f *Fetcher) fetchLine(ctx context.Context, entry Payload) LineInfo {
	itemRef := entry.Ref("item")
	line := LineInfo{
		ItemID:      itemRef.ID,
		SKU:         itemRef.Name,
		Description: entry.Str("description"),
		Quantity:    entry.Dec("quantity"),
		Rate:        entry.Dec("rate"),
		Amount:      entry.Dec("amount"),
		Fulfilled:   entry.Dec("quantityFulfilled"),
		Billed:      entry.Dec("quantityBilled"),
	}
	if itemRef.Link == "" {
		return line
	}
	item, err := f.up.GetLink(ctx, itemRef.Link)
	if err != nil {
		f.log.Warn().Err(err).Int64("item", line.ItemID).Msg("artículo de línea inaccesible")
		return line
	}
	line.Producer = item.Str("custitem_producer")
	line.Region = item.Str("custitem_wine_region")
	return line
}

// runGrouped ejecuta fn(i) para i en [0,total) en grupos concurrentes de
// tamaño fijo. Las llamadas de red siguen pasando por la cola única del
// cliente, así que esto no aumenta la concurrencia real hacia el remoto.
func (f *Fetcher) runGrouped(total int, fn func(i int)) {
	for start := 0; start < total; start += fetchGroupSize {
		end := start + fetchGroupSize
		if end > total {
			end = total
		}
		var wg sys.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				fn(i)
			}(i)
		}
		wg.Wait()
	}
}

// StripCustomerPrefix deriva el nombre visible del cliente desde el refName
// remoto: si contiene un espacio, se descarta el primer token (el remoto
// antepone un código de entidad). Comportamiento heredado tal cual del feed;
// un nombre sin espacio se conserva completo.
func StripCustomerPrefix(raw string) string {
	if idx := strings.IndexByte(raw, ' '); idx >= 0 {
		return raw[idx+1:]
	}
	return raw
}
