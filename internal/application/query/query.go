// Package query filtra colecciones de registros con predicados opcionales (texto, exacto, fecha)
// y las pagina. Todos los predicados se combinan con AND; un predicado nil no restringe.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/pkg/textnorm"
)

// Paginación por defecto.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Predicate decide si un elemento pasa el filtro.
type Predicate[T any] func(T) bool

// Field extrae el valor de texto que se compara.
type Field[T any] func(T) string

// Contains coincide si term aparece (sin acentos ni mayúsculas) en alguno de los campos.
// term vacío devuelve nil.
func Contains[T any](term string, fields ...Field[T]) Predicate[T] {
	needle := textnorm.Fold(term)
	if needle == "" {
		return nil
	}
	return func(item T) bool {
		for _, f := range fields {
			if strings.Contains(textnorm.Fold(f(item)), needle) {
				return true
			}
		}
		return false
	}
}

// IsSentinel indica si el valor desactiva un filtro exacto ("", "all", "todos").
func IsSentinel(v string) bool {
	switch textnorm.Fold(v) {
	case "", "all", "todos", "todas":
		return true
	}
	return false
}

// Equals compara igualdad normalizada. Los valores centinela devuelven nil.
func Equals[T any](value string, field Field[T]) Predicate[T] {
	if IsSentinel(value) {
		return nil
	}
	want := textnorm.Fold(value)
	return func(item T) bool {
		return textnorm.Fold(field(item)) == want
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
}

// ParseDate interpreta una fecha de celda o de filtro en loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func parseFilterDate(name, value string, loc *time.Location) (time.Time, error) {
	t, ok := ParseDate(value, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s=%q no es una fecha", domain.ErrInvalidInput, name, value)
	}
	return t, nil
}

// DateOn coincide cuando la fecha del campo cae en el mismo día calendario que day (en loc).
// Elementos sin fecha legible no coinciden.
func DateOn[T any](day string, loc *time.Location, field Field[T]) (Predicate[T], error) {
	if strings.TrimSpace(day) == "" {
		return nil, nil
	}
	want, err := parseFilterDate("data", day, loc)
	if err != nil {
		return nil, err
	}
	from, to := dayStart(want), dayEnd(want)
	return func(item T) bool {
		got, ok := ParseDate(field(item), loc)
		return ok && !got.Before(from) && !got.After(to)
	}, nil
}

// DateRange coincide con fechas entre from (inicio del día) y to (fin del día, 23:59:59.999),
// ambos opcionales. Elementos sin fecha legible no se excluyen por rango.
func DateRange[T any](from, to string, loc *time.Location, field Field[T]) (Predicate[T], error) {
	var lo, hi time.Time
	if strings.TrimSpace(from) != "" {
		t, err := parseFilterDate("dateFrom", from, loc)
		if err != nil {
			return nil, err
		}
		lo = dayStart(t)
	}
	if strings.TrimSpace(to) != "" {
		t, err := parseFilterDate("dateTo", to, loc)
		if err != nil {
			return nil, err
		}
		hi = dayEnd(t)
	}
	if lo.IsZero() && hi.IsZero() {
		return nil, nil
	}
	return func(item T) bool {
		got, ok := ParseDate(field(item), loc)
		if !ok {
			return true
		}
		if !lo.IsZero() && got.Before(lo) {
			return false
		}
		if !hi.IsZero() && got.After(hi) {
			return false
		}
		return true
	}, nil
}

// Date arma el filtro de fecha: si llega una fecha exacta, el rango se ignora.
func Date[T any](on, from, to string, loc *time.Location, field Field[T]) (Predicate[T], error) {
	if strings.TrimSpace(on) != "" {
		return DateOn(on, loc, field)
	}
	return DateRange(from, to, loc, field)
}

// Apply devuelve, en orden, los elementos que cumplen todos los predicados no nil.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range active {
			if !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Page es una ventana de resultados. Total es el conteo filtrado antes de paginar.
type Page[T any] struct {
	Items []T
	Start int
	Limit int
	Total int
}

// NormalizeWindow aplica defaults: start < 0 -> 0; limit <= 0 -> DefaultLimit; limit > MaxLimit -> MaxLimit.
func NormalizeWindow(start, limit int) (int, int) {
	if start < 0 {
		start = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return start, limit
}

// Paginate recorta items a [start, start+limit). Page.Start conserva el start pedido
// (normalizado) aunque pase del total; solo los límites del recorte se ajustan.
func Paginate[T any](items []T, start, limit int) Page[T] {
	start, limit = NormalizeWindow(start, limit)
	total := len(items)
	from := min(start, total)
	to := min(from+limit, total)
	return Page[T]{
		Items: items[from:to],
		Start: start,
		Limit: limit,
		Total: total,
	}
}
