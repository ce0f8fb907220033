// Package sheets define las hojas del libro, sus cabeceras canónicas, los alias aceptados
// en los payloads y la conversión entre entidades y registros.
package sheets

import (
	"strings"

	"github.com/jhoicas/Obras-api/internal/application/records"
)

// Nombres de hoja.
const (
	Materials      = "Materiais"
	Obras          = "Obras"
	MaterialUsages = "Materiais Utilizados"
	MovementLog    = "Log_Movimentacoes"
	DeletionLog    = "Log_Exclusoes"
)

// Columnas de Materiais.
const (
	ColSKU         = "SKU"
	ColDescription = "Descrição"
	ColUnit        = "Unidade"
	ColStock       = "Qtdd_Depósito"
	ColCategory    = "Categoria"
)

// Columnas de Obras (y las compartidas con Materiais Utilizados).
const (
	ColObraID      = "obra_id"
	ColTechnician  = "tecnico"
	ColRegion      = "uf"
	ColAddress     = "endereco"
	ColNumber      = "numero"
	ColComplement  = "complemento"
	ColOrderType   = "Tipo_obra"
	ColNotes       = "obs"
	ColDate        = "data"
	ColStatus      = "status"
	ColQuantity    = "Quantidade"
	ColUsageDate   = "Data_Utilização"
	ColLogDate     = "Data"
	ColLogDelta    = "Delta"
	ColLogPrevious = "Qtd_Anterior"
	ColLogCurrent  = "Qtd_Nova"
	ColLogReason   = "Motivo"
	ColLogActor    = "Usuario"
)

// Cabeceras canónicas usadas al crear hojas que faltan.
var (
	MaterialHeader = []string{ColSKU, ColDescription, ColUnit, ColStock, ColCategory}
	ObraHeader     = []string{ColObraID, ColTechnician, ColRegion, ColAddress, ColNumber, ColComplement, ColOrderType, ColNotes, ColDate, ColStatus}
	UsageHeader    = []string{ColObraID, ColRegion, ColAddress, ColNumber, ColSKU, ColDescription, ColUnit, ColQuantity, ColUsageDate}
	MovementHeader = []string{ColLogDate, ColSKU, ColLogDelta, ColLogPrevious, ColLogCurrent, ColLogReason, ColLogActor}
	DeletionHeader = []string{ColLogDate, ColSKU, ColDescription, ColLogReason, ColLogActor}
)

// Headers devuelve la cabecera canónica de cada hoja conocida.
func Headers() map[string][]string {
	return map[string][]string{
		Materials:      MaterialHeader,
		Obras:          ObraHeader,
		MaterialUsages: UsageHeader,
		MovementLog:    MovementHeader,
		DeletionLog:    DeletionHeader,
	}
}

// ColumnIndex devuelve la posición de col en header (comparando sin espacios) o -1.
func ColumnIndex(header []string, col string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == col {
			return i
		}
	}
	return -1
}

// KeyColumn devuelve la columna clave; si la cabecera no la tiene, la primera columna.
func KeyColumn(header []string, col string) int {
	if i := ColumnIndex(header, col); i >= 0 {
		return i
	}
	return 0
}

// Alias aceptados en los payloads, en orden de prioridad. El primero no vacío gana.
var (
	AliasSKU         = []string{"id", "SKU", "sku", "code"}
	AliasDescription = []string{ColDescription, "descricao", "description", "name"}
	AliasUnit        = []string{ColUnit, "unidade", "unit"}
	AliasStock       = []string{ColStock, "qtdd_deposito", "stock", "quantity"}
	AliasCategory    = []string{ColCategory, "categoria", "category"}
	AliasDelta       = []string{"delta", "quantity"}
	AliasReason      = []string{"motivo", "reason"}
	AliasActor       = []string{"usuario", "user"}

	AliasObraID     = []string{ColObraID, "idObra", "obraId", "id"}
	AliasTechnician = []string{ColTechnician, "technician"}
	AliasRegion     = []string{ColRegion, "region"}
	AliasAddress    = []string{ColAddress, "address"}
	AliasNumber     = []string{ColNumber, "number"}
	AliasComplement = []string{ColComplement, "complement"}
	AliasOrderType  = []string{"tipoObra", ColOrderType, "orderType"}
	AliasNotes      = []string{ColNotes, "notes"}
	AliasDate       = []string{ColDate, "date"}
	AliasStatus     = []string{ColStatus}
	AliasLines      = []string{"materiais", "materials"}

	AliasLineSKU         = []string{"code", ColSKU, "sku"}
	AliasLineDescription = []string{"name", ColDescription, "descricao"}
	AliasLineUnit        = []string{"unit", ColUnit, "unidade"}
	AliasLineQuantity    = []string{"quantity", ColQuantity, "quantidade"}

	AliasSearch = []string{"search", "query"}
)

// defaults por hoja al armar filas con records.FromRecord.
var (
	MaterialDefaults = records.Record{ColStock: "0"}
	UsageDefaults    = records.Record{ColQuantity: "0"}
)
