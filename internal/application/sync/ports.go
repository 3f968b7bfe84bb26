package sync

import "context"

// Candidate id de un registro candidato devuelto por el listado remoto.
type Candidate struct {
	ID int64
}

// ListQuery parámetros del listado paginado remoto.
// Since filtra por fecha de modificación (formato ISO "2006-01-02"); vacío = sin filtro.
type ListQuery struct {
	Since  string
	Limit  int
	Offset int
}

// Page una página del listado remoto.
type Page struct {
	Items   []Candidate
	HasMore bool
	Total   int // totalResults informado por el remoto
	Count   int
	Offset  int
}

// Upstream puerta de acceso al ERP remoto. Toda llamada pasa por el cliente con
// límite de tasa, así que el ritmo global se respeta sin importar quién llame.
type Upstream interface {
	ListInventoryItems(ctx context.Context, q ListQuery) (Page, error)
	ListSalesOrders(ctx context.Context, q ListQuery) (Page, error)
	// GetRecord registro base por tipo e id, con sublistas expandidas.
	GetRecord(ctx context.Context, kind string, id int64) (Payload, error)
	// GetLink sigue el hipervínculo de un subrecurso devuelto en un listado.
	GetLink(ctx context.Context, href string) (Payload, error)
	// RunQuery consulta analítica (SuiteQL); devuelve filas tabulares.
	RunQuery(ctx context.Context, query string) ([]Payload, error)
	// Probe llamada ligera de verificación de credenciales.
	Probe(ctx context.Context) error
}

// Tipos de registro remotos que sincronizamos.
const (
	KindInventoryItem = "inventoryitem"
	KindSalesOrder    = "salesorder"
)
