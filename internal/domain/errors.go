package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrTableNotFound  = errors.New("hoja no encontrada")
	ErrNotFound       = errors.New("registro no encontrado")
	ErrDuplicate      = errors.New("registro duplicado")
	ErrInvalidInput   = errors.New("payload inválido")
	ErrRequestTimeout = errors.New("tiempo de espera agotado")
	ErrUpstream       = errors.New("respuesta inválida del backend")
)
