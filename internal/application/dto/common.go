package dto

import (
	"strconv"

	"github.com/jhoicas/Obras-api/internal/application/records"
)

// PageRequest ventana de paginación (start/limit).
type PageRequest struct {
	Start int `query:"start"`
	Limit int `query:"limit"`
}

// PageRequestFromPayload lee start y limit; valores no numéricos quedan en cero.
func PageRequestFromPayload(p records.Payload) PageRequest {
	return PageRequest{
		Start: atoi(p.First("start", "offset")),
		Limit: atoi(p.First("limit")),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return int(records.Int(s))
	}
	return n
}

// PageMeta metadatos de página en respuestas de búsqueda.
type PageMeta struct {
	Count  int    `json:"count"`
	Start  int    `json:"start"`
	Limit  int    `json:"limit"`
	Total  int    `json:"total"`
	Search string `json:"search"`
}

// CountMeta metadatos de listados sin paginar.
type CountMeta struct {
	Count int `json:"count"`
}

// OKResponse respuesta genérica de mutación.
type OKResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HealthResponse respuesta de la acción test.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse cuerpo de error HTTP. Los clientes solo miran el campo error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Actor devuelve el usuario declarado en el payload, o vacío.
func Actor(p records.Payload) string {
	return p.First("usuario", "user")
}
