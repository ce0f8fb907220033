package repository

import "context"

// Row es una fila posicional de una hoja (sin la cabecera).
type Row []string

// Clone devuelve una copia independiente de la fila.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// TabularStore define el puerto de persistencia de hojas con nombre: una fila de cabecera
// más filas de datos ordenadas por inserción. Los índices de fila son 0-based y no
// cuentan la cabecera.
//
// Todas las operaciones devuelven domain.ErrTableNotFound si la hoja no existe.
// Las mutaciones son visibles de inmediato para lecturas posteriores.
type TabularStore interface {
	// ListTable devuelve la cabecera y todas las filas en orden de inserción.
	ListTable(ctx context.Context, name string) (header []string, rows []Row, err error)
	// AppendRow agrega la fila al final. No valida unicidad.
	AppendRow(ctx context.Context, name string, row Row) error
	// FindRowIndexByKey busca linealmente la primera fila cuyo valor en keyCol sea key.
	// La comparación ignora espacios en los extremos de la celda y de key (celdas editadas a mano).
	// Devuelve domain.ErrNotFound si ninguna coincide.
	FindRowIndexByKey(ctx context.Context, name string, keyCol int, key string) (int, error)
	// UpdateRow reemplaza completa la fila en index.
	UpdateRow(ctx context.Context, name string, index int, row Row) error
	// DeleteRow elimina la fila; las siguientes suben una posición.
	DeleteRow(ctx context.Context, name string, index int) error
	// EnsureTable crea la hoja con la cabecera dada si no existe. No toca hojas existentes.
	EnsureTable(ctx context.Context, name string, header []string) error
}

// Transactor lo implementan los backends que pueden agrupar varias mutaciones de forma atómica.
// fn recibe un TabularStore atado a la transacción; si fn devuelve error se hace rollback.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(store TabularStore) error) error
}
