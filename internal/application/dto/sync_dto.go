package dto

// SyncItemsRequest parámetros del modo incremental (artículos u órdenes).
// Since en formato ISO "YYYY-MM-DD" como lo espera el filtro por fecha de
// modificación del listado remoto; vacío significa sin filtro.
type SyncItemsRequest struct {
	Limit int    `json:"limit"`
	Since string `json:"since"`
}

// SweepRequest parámetros del barrido completo del catálogo.
type SweepRequest struct {
	BatchSize    int `json:"batch_size"`
	MaxItems     int `json:"max_items"`
	BatchDelayMs int `json:"batch_delay_ms"`
}

// MovementRequest parámetros de la pasada de enriquecimiento de movimiento.
type MovementRequest struct {
	BatchSize int `json:"batch_size"`
	MaxItems  int `json:"max_items"`
}

// ProbeResponse resultado del chequeo de credenciales contra el remoto.
type ProbeResponse struct {
	Ok bool `json:"ok"`
}
