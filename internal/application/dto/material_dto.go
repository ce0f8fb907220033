package dto

import (
	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// AddMaterialRequest entrada normalizada para agregar un material.
type AddMaterialRequest struct {
	SKU           string `json:"SKU" validate:"required,sku"`
	Description   string `json:"Descrição" validate:"required,max=200"`
	Unit          string `json:"Unidade" validate:"required,max=20"`
	StockQuantity int64  `json:"Qtdd_Depósito" validate:"gte=0"`
	Category      string `json:"Categoria" validate:"oneof=Interno Externo"`
	Actor         string `json:"-"`
}

// AddMaterialRequestFromPayload resuelve los alias (SKU/code, Descrição/name...) a la forma canónica.
func AddMaterialRequestFromPayload(p records.Payload) AddMaterialRequest {
	in := AddMaterialRequest{
		SKU:           sheets.NormalizeSKU(p.First(sheets.AliasSKU...)),
		Description:   p.First(sheets.AliasDescription...),
		Unit:          p.First(sheets.AliasUnit...),
		StockQuantity: records.Int(p.First(sheets.AliasStock...)),
		Actor:         Actor(p),
	}
	raw := p.First(sheets.AliasCategory...)
	if cat, ok := sheets.NormalizeCategory(raw); ok {
		in.Category = cat
	} else if raw == "" {
		in.Category = entity.CategoryInternal
	} else {
		in.Category = raw
	}
	return in
}

// UpdateMaterialRequest actualización parcial: solo los campos no vacíos se aplican.
type UpdateMaterialRequest struct {
	SKU           string `validate:"required"`
	Description   string `validate:"omitempty,max=200"`
	Unit          string `validate:"omitempty,max=20"`
	StockQuantity *int64 `validate:"omitempty,gte=0"`
	Category      string `validate:"omitempty,oneof=Interno Externo"`
	Actor         string
}

// UpdateMaterialRequestFromPayload resuelve alias; id/SKU identifica el material.
func UpdateMaterialRequestFromPayload(p records.Payload) UpdateMaterialRequest {
	in := UpdateMaterialRequest{
		SKU:         sheets.NormalizeSKU(p.First(sheets.AliasSKU...)),
		Description: p.First(sheets.AliasDescription...),
		Unit:        p.First(sheets.AliasUnit...),
		Actor:       Actor(p),
	}
	// quantity solo se acepta como stock inicial en el alta
	if raw := p.First(sheets.ColStock, "qtdd_deposito", "stock"); raw != "" {
		n := records.Int(raw)
		in.StockQuantity = &n
	}
	raw := p.First(sheets.AliasCategory...)
	if cat, ok := sheets.NormalizeCategory(raw); ok {
		in.Category = cat
	} else {
		in.Category = raw
	}
	return in
}

// IncrementMaterialRequest suma delta (positivo o negativo) al stock.
type IncrementMaterialRequest struct {
	SKU    string `validate:"required"`
	Delta  int64
	Reason string
	Actor  string
}

// IncrementMaterialRequestFromPayload lee id/sku/SKU, delta/quantity y motivo. Un delta no numérico vale 0.
func IncrementMaterialRequestFromPayload(p records.Payload) IncrementMaterialRequest {
	return IncrementMaterialRequest{
		SKU:    sheets.NormalizeSKU(p.First(sheets.AliasSKU...)),
		Delta:  records.Int(p.First(sheets.AliasDelta...)),
		Reason: p.First(sheets.AliasReason...),
		Actor:  Actor(p),
	}
}

// DeleteMaterialRequest elimina un material por SKU.
type DeleteMaterialRequest struct {
	SKU    string `validate:"required"`
	Reason string
	Actor  string
}

// DeleteMaterialRequestFromPayload lee id/SKU y motivo.
func DeleteMaterialRequestFromPayload(p records.Payload) DeleteMaterialRequest {
	return DeleteMaterialRequest{
		SKU:    sheets.NormalizeSKU(p.First(sheets.AliasSKU...)),
		Reason: p.First(sheets.AliasReason...),
		Actor:  Actor(p),
	}
}

// SearchMaterialsRequest búsqueda paginada por SKU o descripción.
type SearchMaterialsRequest struct {
	Term string
	PageRequest
}

// SearchMaterialsRequestFromPayload lee search/query, start y limit.
func SearchMaterialsRequestFromPayload(p records.Payload) SearchMaterialsRequest {
	return SearchMaterialsRequest{
		Term:        p.First(sheets.AliasSearch...),
		PageRequest: PageRequestFromPayload(p),
	}
}

// MaterialResponse material con las claves de la hoja.
type MaterialResponse struct {
	SKU           string `json:"SKU"`
	Description   string `json:"Descrição"`
	Unit          string `json:"Unidade"`
	StockQuantity int64  `json:"Qtdd_Depósito"`
	Category      string `json:"Categoria"`
}

// NewMaterialResponse convierte la entidad.
func NewMaterialResponse(m entity.Material) MaterialResponse {
	return MaterialResponse{
		SKU:           m.SKU,
		Description:   m.Description,
		Unit:          m.Unit,
		StockQuantity: m.StockQuantity,
		Category:      m.Category,
	}
}

// MaterialListResponse respuesta de getMaterials.
type MaterialListResponse struct {
	Materials []MaterialResponse `json:"materials"`
}

// MaterialSearchResponse respuesta de searchMaterials.
type MaterialSearchResponse struct {
	Materials []MaterialResponse `json:"materials"`
	Meta      PageMeta           `json:"meta"`
}

// MaterialsByCategoryResponse respuesta de getMaterialsByCategory.
type MaterialsByCategoryResponse struct {
	OK   bool               `json:"ok"`
	Data []MaterialResponse `json:"data"`
	Meta CountMeta          `json:"meta"`
}

// AddMaterialResponse respuesta de addMaterial.
type AddMaterialResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	SKU     string `json:"SKU"`
}

// IncrementMaterialResponse respuesta de incrementMaterial.
type IncrementMaterialResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	NewQty  int64  `json:"newQty"`
}
