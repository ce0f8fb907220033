package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.TabularStore = (*TabularStore)(nil)

// TabularStore implementa el puerto de hojas sobre las tablas sheets/sheet_rows
// (usable con pool o tx). Cada mutación corre en su propia transacción (o savepoint
// si q ya es una tx) con un advisory lock por hoja.
type TabularStore struct {
	q Querier
}

// NewTabularStore construye el adaptador. Pasar pool o tx (Querier).
func NewTabularStore(q Querier) *TabularStore {
	return &TabularStore{q: q}
}

func loadHeader(ctx context.Context, q Querier, name string) ([]string, error) {
	var header []string
	err := q.QueryRow(ctx, `SELECT header FROM sheets WHERE name = $1`, name).Scan(&header)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("get sheet header: %w", err)
	}
	return header, nil
}

// mutate abre una transacción, bloquea la hoja y ejecuta fn con su cabecera.
func (s *TabularStore) mutate(ctx context.Context, name string, fn func(tx pgx.Tx, header []string) error) error {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, sheetLockKey(name)); err != nil {
		return fmt.Errorf("lock sheet %s: %w", name, err)
	}
	header, err := loadHeader(ctx, tx, name)
	if err != nil {
		return err
	}
	if err := fn(tx, header); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListTable devuelve cabecera y filas ordenadas por posición.
func (s *TabularStore) ListTable(ctx context.Context, name string) ([]string, []repository.Row, error) {
	header, err := loadHeader(ctx, s.q, name)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.q.Query(ctx, `SELECT cells FROM sheet_rows WHERE sheet = $1 ORDER BY position`, name)
	if err != nil {
		return nil, nil, fmt.Errorf("list sheet rows: %w", err)
	}
	defer rows.Close()
	var out []repository.Row
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, nil, fmt.Errorf("scan sheet row: %w", err)
		}
		out = append(out, repository.Row(cells))
	}
	return header, out, rows.Err()
}

// AppendRow inserta la fila en la siguiente posición libre.
func (s *TabularStore) AppendRow(ctx context.Context, name string, row repository.Row) error {
	return s.mutate(ctx, name, func(tx pgx.Tx, header []string) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sheet_rows (sheet, position, cells)
			SELECT $1, COALESCE(MAX(position) + 1, 0), $2 FROM sheet_rows WHERE sheet = $1`,
			name, padCells(row, len(header)),
		)
		if err != nil {
			return fmt.Errorf("append sheet row: %w", err)
		}
		return nil
	})
}

// FindRowIndexByKey devuelve la menor posición cuyo valor en keyCol coincide.
func (s *TabularStore) FindRowIndexByKey(ctx context.Context, name string, keyCol int, key string) (int, error) {
	if _, err := loadHeader(ctx, s.q, name); err != nil {
		return -1, err
	}
	var position int
	err := s.q.QueryRow(ctx, `
		SELECT position FROM sheet_rows
		WHERE sheet = $1 AND btrim(cells[$2::int], E' \t\r\n') = $3
		ORDER BY position LIMIT 1`,
		name, keyCol+1, strings.TrimSpace(key),
	).Scan(&position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return -1, fmt.Errorf("%w: %s=%q", domain.ErrNotFound, name, key)
		}
		return -1, fmt.Errorf("find sheet row: %w", err)
	}
	return position, nil
}

// UpdateRow reemplaza las celdas de la fila en index.
func (s *TabularStore) UpdateRow(ctx context.Context, name string, index int, row repository.Row) error {
	return s.mutate(ctx, name, func(tx pgx.Tx, header []string) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE sheet_rows SET cells = $3, updated_at = now()
			WHERE sheet = $1 AND position = $2`,
			name, index, padCells(row, len(header)),
		)
		if err != nil {
			return fmt.Errorf("update sheet row: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s fila %d", domain.ErrNotFound, name, index)
		}
		return nil
	})
}

// DeleteRow borra la fila y desplaza las posiciones siguientes.
func (s *TabularStore) DeleteRow(ctx context.Context, name string, index int) error {
	return s.mutate(ctx, name, func(tx pgx.Tx, _ []string) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM sheet_rows WHERE sheet = $1 AND position = $2`, name, index)
		if err != nil {
			return fmt.Errorf("delete sheet row: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s fila %d", domain.ErrNotFound, name, index)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE sheet_rows SET position = position - 1 WHERE sheet = $1 AND position > $2`,
			name, index,
		); err != nil {
			return fmt.Errorf("shift sheet rows: %w", err)
		}
		return nil
	})
}

// EnsureTable registra la hoja si no existe.
func (s *TabularStore) EnsureTable(ctx context.Context, name string, header []string) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO sheets (name, header) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		name, header,
	)
	if err != nil {
		return fmt.Errorf("ensure sheet: %w", err)
	}
	return nil
}
