package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrValidation   = errors.New("registro inválido")
	ErrAuthFailed   = errors.New("autenticación con el ERP remoto rechazada")
	ErrRateLimited  = errors.New("límite de peticiones del ERP remoto agotado")
)
