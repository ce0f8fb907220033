// Package records traduce entre filas posicionales (cabecera + celdas) y registros con clave,
// y normaliza los payloads de entrada que llegan con varios alias por campo.
package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// Record es una fila indexada por nombre de columna.
type Record map[string]string

// Get devuelve el valor de la columna y si la fila tenía esa celda.
func (r Record) Get(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

// ToRecord une los nombres de la cabecera (recortados) con las celdas de la fila.
// Celdas sobrantes se descartan; columnas sin celda quedan ausentes del registro.
func ToRecord(header []string, row repository.Row) Record {
	rec := make(Record, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || i >= len(row) {
			continue
		}
		rec[name] = row[i]
	}
	return rec
}

// FromRecord arma la fila en el orden de la cabecera. Por columna toma el valor del registro
// si existe y no está vacío; si no, el default; si no, "".
func FromRecord(header []string, rec Record, defaults map[string]string) repository.Row {
	row := make(repository.Row, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if v := strings.TrimSpace(rec[name]); v != "" {
			row[i] = rec[name]
			continue
		}
		row[i] = defaults[name]
	}
	return row
}

// Payload es el cuerpo JSON decodificado de una acción.
type Payload map[string]any

// First devuelve el primer alias presente y no vacío, en el orden dado.
func (p Payload) First(aliases ...string) string {
	for _, a := range aliases {
		v, ok := p[a]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(Stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

// Has indica si alguno de los alias trae un valor no vacío.
func (p Payload) Has(aliases ...string) bool {
	return p.First(aliases...) != ""
}

// Slice devuelve el primer alias que sea una lista de objetos.
func (p Payload) Slice(aliases ...string) []Payload {
	for _, a := range aliases {
		list, ok := p[a].([]any)
		if !ok {
			continue
		}
		out := make([]Payload, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Payload(m))
			}
		}
		return out
	}
	return nil
}

// Stringify convierte un valor JSON decodificado a su forma de celda.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Number interpreta s como número con la política Number(x) || 0: entrada vacía,
// no numérica o no finita da cero en vez de error. Acepta coma decimal.
func Number(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(f)
	}
	return d
}

// Int es Number redondeado al entero más cercano.
func Int(s string) int64 {
	return Number(s).Round(0).IntPart()
}
