package sheets

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// LogTimeLayout formato de fecha en las hojas de auditoría.
const LogTimeLayout = "2006-01-02 15:04:05"

// DateLayout formato de fecha de obra.
const DateLayout = "2006-01-02"

var nineDigits = regexp.MustCompile(`^\d{9}$`)

// NormalizeSKU recorta el código y, si trae exactamente nueve dígitos, lo formatea xxxx-xxxx-x.
func NormalizeSKU(sku string) string {
	s := strings.TrimSpace(sku)
	if nineDigits.MatchString(s) {
		return s[:4] + "-" + s[4:8] + "-" + s[8:]
	}
	return s
}

// NormalizeCategory devuelve la categoría canónica; vacío o desconocido -> ("", false).
func NormalizeCategory(c string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "interno", "internal":
		return entity.CategoryInternal, true
	case "externo", "external":
		return entity.CategoryExternal, true
	}
	return "", false
}

// NormalizeOrderType devuelve el tipo de obra canónico; vacío o desconocido -> ("", false).
func NormalizeOrderType(t string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "alivio", "alívio", "relief":
		return entity.OrderTypeRelief, true
	case "adequacao", "adequação", "adequacy":
		return entity.OrderTypeAdequacy, true
	}
	return "", false
}

// MaterialFromRecord lee una fila de Materiais. Categoría vacía se lee como Interno.
func MaterialFromRecord(rec records.Record) entity.Material {
	cat, ok := NormalizeCategory(rec[ColCategory])
	if !ok {
		cat = strings.TrimSpace(rec[ColCategory])
		if cat == "" {
			cat = entity.CategoryInternal
		}
	}
	stock := records.Int(rec[ColStock])
	if stock < 0 {
		stock = 0
	}
	return entity.Material{
		SKU:           strings.TrimSpace(rec[ColSKU]),
		Description:   rec[ColDescription],
		Unit:          rec[ColUnit],
		StockQuantity: stock,
		Category:      cat,
	}
}

// MaterialToRecord es la inversa de MaterialFromRecord.
func MaterialToRecord(m entity.Material) records.Record {
	return records.Record{
		ColSKU:         m.SKU,
		ColDescription: m.Description,
		ColUnit:        m.Unit,
		ColStock:       strconv.FormatInt(m.StockQuantity, 10),
		ColCategory:    m.Category,
	}
}

// WorkOrderFromRecord lee una fila de Obras (sin materiales).
func WorkOrderFromRecord(rec records.Record) entity.WorkOrder {
	return entity.WorkOrder{
		ID:         strings.TrimSpace(rec[ColObraID]),
		Technician: rec[ColTechnician],
		Region:     rec[ColRegion],
		Address:    rec[ColAddress],
		Number:     rec[ColNumber],
		Complement: rec[ColComplement],
		OrderType:  rec[ColOrderType],
		Notes:      rec[ColNotes],
		Date:       rec[ColDate],
		Status:     rec[ColStatus],
	}
}

// WorkOrderToRecord arma el registro de la obra.
func WorkOrderToRecord(o entity.WorkOrder) records.Record {
	return records.Record{
		ColObraID:     o.ID,
		ColTechnician: o.Technician,
		ColRegion:     o.Region,
		ColAddress:    o.Address,
		ColNumber:     o.Number,
		ColComplement: o.Complement,
		ColOrderType:  o.OrderType,
		ColNotes:      o.Notes,
		ColDate:       o.Date,
		ColStatus:     o.Status,
	}
}

// UsageFromRecord lee una fila de Materiais Utilizados. Cantidad no numérica vale 0.
func UsageFromRecord(rec records.Record) entity.MaterialUsage {
	return entity.MaterialUsage{
		OrderID:     strings.TrimSpace(rec[ColObraID]),
		Region:      rec[ColRegion],
		Address:     rec[ColAddress],
		Number:      rec[ColNumber],
		SKU:         rec[ColSKU],
		Description: rec[ColDescription],
		Unit:        rec[ColUnit],
		Quantity:    records.Number(rec[ColQuantity]),
		UsageDate:   rec[ColUsageDate],
	}
}

// UsageToRecord arma el registro de una línea de material.
func UsageToRecord(u entity.MaterialUsage) records.Record {
	return records.Record{
		ColObraID:      u.OrderID,
		ColRegion:      u.Region,
		ColAddress:     u.Address,
		ColNumber:      u.Number,
		ColSKU:         u.SKU,
		ColDescription: u.Description,
		ColUnit:        u.Unit,
		ColQuantity:    u.Quantity.String(),
		ColUsageDate:   u.UsageDate,
	}
}

// MovementToRecord arma la fila de Log_Movimentacoes.
func MovementToRecord(e entity.MovementLogEntry, loc *time.Location) records.Record {
	return records.Record{
		ColLogDate:     e.At.In(loc).Format(LogTimeLayout),
		ColSKU:         e.SKU,
		ColLogDelta:    strconv.FormatInt(e.Delta, 10),
		ColLogPrevious: strconv.FormatInt(e.Previous, 10),
		ColLogCurrent:  strconv.FormatInt(e.Current, 10),
		ColLogReason:   e.Reason,
		ColLogActor:    e.Actor,
	}
}

// DeletionToRecord arma la fila de Log_Exclusoes.
func DeletionToRecord(e entity.DeletionLogEntry, loc *time.Location) records.Record {
	return records.Record{
		ColLogDate:     e.At.In(loc).Format(LogTimeLayout),
		ColSKU:         e.SKU,
		ColDescription: e.Description,
		ColLogReason:   e.Reason,
		ColLogActor:    e.Actor,
	}
}

// QuantityDelta convierte una cantidad usada en el delta entero de stock (negativo, redondeado).
func QuantityDelta(q decimal.Decimal) int64 {
	return -q.Round(0).IntPart()
}
