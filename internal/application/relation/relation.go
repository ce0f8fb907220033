// Package relation une registros padre con sus hijos por clave foránea.
package relation

// Index agrupa hijos por clave conservando el orden de inserción.
type Index[C any] map[string][]C

// IndexBy recorre los hijos una sola vez y los agrupa por key(child).
// Los hijos con clave vacía se descartan.
func IndexBy[C any](children []C, key func(C) string) Index[C] {
	idx := make(Index[C])
	for _, c := range children {
		k := key(c)
		if k == "" {
			continue
		}
		idx[k] = append(idx[k], c)
	}
	return idx
}

// Children devuelve los hijos de parentKey; nunca nil (sin hijos -> lista vacía).
func (idx Index[C]) Children(parentKey string) []C {
	if list, ok := idx[parentKey]; ok {
		out := make([]C, len(list))
		copy(out, list)
		return out
	}
	return []C{}
}

// Attach aplica set a cada padre con los hijos que le corresponden.
func Attach[P, C any](parents []P, parentKey func(P) string, idx Index[C], set func(*P, []C)) {
	for i := range parents {
		set(&parents[i], idx.Children(parentKey(parents[i])))
	}
}
