package dto

// PageResponse metadatos de paginación que acompañan a los listados del
// catálogo y de órdenes. Total es el conteo sin paginar para que el cliente
// pueda dimensionar el recorrido.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo uniforme de error HTTP. Code es estable para que los
// clientes decidan por código y no parseando el mensaje.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
