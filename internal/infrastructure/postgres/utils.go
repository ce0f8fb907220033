package postgres

import (
	"context"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx; los repos funcionan con ambos.
// Begin sobre una pgx.Tx abre un savepoint.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// sheetLockKey deriva la clave del advisory lock de una hoja.
func sheetLockKey(sheet string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("sheet:" + sheet))
	return int64(h.Sum64())
}

// padCells ajusta la fila al ancho de la cabecera para que text[] conserve las posiciones.
func padCells(cells []string, width int) []string {
	out := make([]string, len(cells), max(len(cells), width))
	copy(out, cells)
	for len(out) < width {
		out = append(out, "")
	}
	return out
}
