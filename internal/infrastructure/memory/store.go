// Package memory implementa repository.TabularStore en memoria del proceso.
// Se usa en desarrollo y en tests; los datos se pierden al reiniciar.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.TabularStore = (*Store)(nil)

type table struct {
	header []string
	rows   []repository.Row
}

// Store guarda las hojas en mapas protegidos por un RWMutex.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{tables: make(map[string]*table)}
}

// Seed crea (o reemplaza) una hoja con cabecera y filas. Pensado para tests y arranque.
func (s *Store) Seed(name string, header []string, rows ...repository.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &table{header: append([]string(nil), header...)}
	for _, r := range rows {
		t.rows = append(t.rows, r.Clone())
	}
	s.tables[name] = t
}

func (s *Store) lookup(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, name)
	}
	return t, nil
}

// ListTable devuelve copias de la cabecera y las filas.
func (s *Store) ListTable(_ context.Context, name string) ([]string, []repository.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.lookup(name)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]repository.Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Clone()
	}
	return append([]string(nil), t.header...), rows, nil
}

// AppendRow agrega una copia de la fila al final.
func (s *Store) AppendRow(_ context.Context, name string, row repository.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(name)
	if err != nil {
		return err
	}
	t.rows = append(t.rows, row.Clone())
	return nil
}

// FindRowIndexByKey recorre las filas en orden; gana la primera coincidencia.
func (s *Store) FindRowIndexByKey(_ context.Context, name string, keyCol int, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.lookup(name)
	if err != nil {
		return -1, err
	}
	key = strings.TrimSpace(key)
	for i, r := range t.rows {
		if keyCol < len(r) && strings.TrimSpace(r[keyCol]) == key {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s=%q", domain.ErrNotFound, name, key)
}

// UpdateRow reemplaza la fila completa.
func (s *Store) UpdateRow(_ context.Context, name string, index int, row repository.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %s fila %d", domain.ErrNotFound, name, index)
	}
	t.rows[index] = row.Clone()
	return nil
}

// DeleteRow elimina la fila y desplaza las siguientes.
func (s *Store) DeleteRow(_ context.Context, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookup(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %s fila %d", domain.ErrNotFound, name, index)
	}
	t.rows = append(t.rows[:index], t.rows[index+1:]...)
	return nil
}

// EnsureTable crea la hoja si no existe.
func (s *Store) EnsureTable(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; ok {
		return nil
	}
	s.tables[name] = &table{header: append([]string(nil), header...)}
	return nil
}
