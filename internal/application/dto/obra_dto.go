package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// SaveObraLine línea de material enviada por el técnico.
type SaveObraLine struct {
	SKU         string          `json:"code" validate:"required,max=50"`
	Description string          `json:"name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// SaveObraRequest entrada normalizada de saveObra.
type SaveObraRequest struct {
	ID         string         `json:"obra_id" validate:"omitempty,max=64"`
	Technician string         `json:"tecnico" validate:"required,max=120"`
	Region     string         `json:"uf" validate:"max=10"`
	Address    string         `json:"endereco" validate:"max=200"`
	Number     string         `json:"numero" validate:"max=20"`
	Complement string         `json:"complemento"`
	OrderType  string         `json:"tipoObra" validate:"omitempty,oneof=Alivio Adequacao"`
	Notes      string         `json:"obs"`
	Date       string         `json:"data"`
	Status     string         `json:"status"`
	Materials  []SaveObraLine `json:"materiais" validate:"dive"`
	Actor      string         `json:"-"`
}

// SaveObraRequestFromPayload resuelve alias de la obra y de cada línea de materiais.
// Cantidades no numéricas valen 0 (y luego no pasan la validación).
func SaveObraRequestFromPayload(p records.Payload) SaveObraRequest {
	in := SaveObraRequest{
		ID:         p.First(sheets.AliasObraID...),
		Technician: p.First(sheets.AliasTechnician...),
		Region:     p.First(sheets.AliasRegion...),
		Address:    p.First(sheets.AliasAddress...),
		Number:     p.First(sheets.AliasNumber...),
		Complement: p.First(sheets.AliasComplement...),
		Notes:      p.First(sheets.AliasNotes...),
		Date:       p.First(sheets.AliasDate...),
		Status:     p.First(sheets.AliasStatus...),
		Actor:      Actor(p),
	}
	raw := p.First(sheets.AliasOrderType...)
	if t, ok := sheets.NormalizeOrderType(raw); ok {
		in.OrderType = t
	} else {
		in.OrderType = raw
	}
	for _, line := range p.Slice(sheets.AliasLines...) {
		in.Materials = append(in.Materials, SaveObraLine{
			SKU:         sheets.NormalizeSKU(line.First(sheets.AliasLineSKU...)),
			Description: line.First(sheets.AliasLineDescription...),
			Unit:        line.First(sheets.AliasLineUnit...),
			Quantity:    records.Number(line.First(sheets.AliasLineQuantity...)),
		})
	}
	return in
}

// ListObrasRequest filtros opcionales de getObras. Vacío = sin restricción.
type ListObrasRequest struct {
	Address    string
	Technician string
	Date       string
	DateFrom   string
	DateTo     string
	OrderType  string
	Region     string
}

// ListObrasRequestFromPayload lee los filtros desde query string o cuerpo.
// El tipo de obra se normaliza igual que en saveObra (Relief -> Alivio); centinelas y
// valores desconocidos pasan sin cambios.
func ListObrasRequestFromPayload(p records.Payload) ListObrasRequest {
	in := ListObrasRequest{
		Address:    p.First(sheets.AliasAddress...),
		Technician: p.First(sheets.AliasTechnician...),
		Date:       p.First(sheets.AliasDate...),
		DateFrom:   p.First("dateFrom"),
		DateTo:     p.First("dateTo"),
		OrderType:  p.First(sheets.AliasOrderType...),
		Region:     p.First(sheets.AliasRegion...),
	}
	if t, ok := sheets.NormalizeOrderType(in.OrderType); ok {
		in.OrderType = t
	}
	return in
}

// ObraLineResponse material adjunto a una obra.
type ObraLineResponse struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// ObraResponse obra con las claves de la hoja y sus materiales.
type ObraResponse struct {
	ObraID     string             `json:"obra_id"`
	Technician string             `json:"tecnico"`
	Region     string             `json:"uf"`
	Address    string             `json:"endereco"`
	Number     string             `json:"numero"`
	Complement string             `json:"complemento"`
	OrderType  string             `json:"Tipo_obra"`
	Notes      string             `json:"obs"`
	Date       string             `json:"data"`
	Status     string             `json:"status"`
	Materials  []ObraLineResponse `json:"materiais"`
}

// NewObraResponse convierte la entidad con sus materiales.
func NewObraResponse(o entity.WorkOrder) ObraResponse {
	lines := make([]ObraLineResponse, 0, len(o.Materials))
	for _, m := range o.Materials {
		lines = append(lines, ObraLineResponse{
			Code:     m.SKU,
			Name:     m.Description,
			Unit:     m.Unit,
			Quantity: m.Quantity.InexactFloat64(),
		})
	}
	return ObraResponse{
		ObraID:     o.ID,
		Technician: o.Technician,
		Region:     o.Region,
		Address:    o.Address,
		Number:     o.Number,
		Complement: o.Complement,
		OrderType:  o.OrderType,
		Notes:      o.Notes,
		Date:       o.Date,
		Status:     o.Status,
		Materials:  lines,
	}
}

// ObraListResponse respuesta de getObras.
type ObraListResponse struct {
	Obras []ObraResponse `json:"obras"`
	Total int            `json:"total"`
}

// SaveObraResponse respuesta de saveObra. obraId repite obra_id para el cliente web.
type SaveObraResponse struct {
	Message      string `json:"message"`
	ObraID       string `json:"obra_id"`
	ObraIDCompat string `json:"obraId"`
	Date         string `json:"data"`
}
