// Package xlsx implementa repository.TabularStore sobre un libro .xlsx en disco:
// cada hoja del libro es una tabla, la fila 1 es la cabecera y los datos empiezan en la fila 2.
// Cada mutación se guarda en el archivo antes de retornar.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.TabularStore = (*Store)(nil)

// Store adaptador de hojas sobre excelize. Un único libro por proceso.
type Store struct {
	mu   sync.Mutex
	path string
	f    *excelize.File
}

// Open abre el libro en path o crea uno nuevo si no existe.
func Open(path string) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("abrir libro %s: %w", path, err)
		}
		f = excelize.NewFile()
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("crear directorio %s: %w", dir, err)
			}
		}
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("crear libro %s: %w", path, err)
		}
	}
	return &Store{path: path, f: f}, nil
}

// Close libera el libro.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

func (s *Store) exists(name string) bool {
	idx, err := s.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// rows devuelve todas las filas del libro incluyendo la cabecera.
func (s *Store) rows(name string) ([][]string, error) {
	if !s.exists(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, name)
	}
	all, err := s.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", name, err)
	}
	return all, nil
}

func (s *Store) writeRow(name string, sheetRow int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, sheetRow)
	if err != nil {
		return fmt.Errorf("celda fila %d: %w", sheetRow, err)
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	if err := s.f.SetSheetRow(name, cell, &out); err != nil {
		return fmt.Errorf("escribir fila %d en %s: %w", sheetRow, name, err)
	}
	return nil
}

func (s *Store) save() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("guardar libro %s: %w", s.path, err)
	}
	return nil
}

// ListTable lee cabecera y filas de datos.
func (s *Store) ListTable(_ context.Context, name string) ([]string, []repository.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.rows(name)
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return []string{}, nil, nil
	}
	rows := make([]repository.Row, 0, len(all)-1)
	for _, r := range all[1:] {
		rows = append(rows, repository.Row(r))
	}
	return all[0], rows, nil
}

// AppendRow escribe la fila debajo de la última fila ocupada.
func (s *Store) AppendRow(_ context.Context, name string, row repository.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.rows(name)
	if err != nil {
		return err
	}
	next := len(all) + 1
	if len(all) == 0 {
		// sin cabecera la fila 1 queda reservada
		next = 2
	}
	if err := s.writeRow(name, next, row); err != nil {
		return err
	}
	return s.save()
}

// FindRowIndexByKey recorre la hoja desde la fila 2.
func (s *Store) FindRowIndexByKey(_ context.Context, name string, keyCol int, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.rows(name)
	if err != nil {
		return -1, err
	}
	key = strings.TrimSpace(key)
	for i := 1; i < len(all); i++ {
		if keyCol < len(all[i]) && strings.TrimSpace(all[i][keyCol]) == key {
			return i - 1, nil
		}
	}
	return -1, fmt.Errorf("%w: %s=%q", domain.ErrNotFound, name, key)
}

// UpdateRow sobrescribe la fila y limpia las celdas sobrantes a la derecha.
func (s *Store) UpdateRow(_ context.Context, name string, index int, row repository.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.rows(name)
	if err != nil {
		return err
	}
	if index < 0 || index+1 >= len(all) {
		return fmt.Errorf("%w: %s fila %d", domain.ErrNotFound, name, index)
	}
	values := []string(row.Clone())
	for len(values) < len(all[index+1]) {
		values = append(values, "")
	}
	if err := s.writeRow(name, index+2, values); err != nil {
		return err
	}
	return s.save()
}

// DeleteRow elimina la fila física; excelize desplaza las siguientes.
func (s *Store) DeleteRow(_ context.Context, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.rows(name)
	if err != nil {
		return err
	}
	if index < 0 || index+1 >= len(all) {
		return fmt.Errorf("%w: %s fila %d", domain.ErrNotFound, name, index)
	}
	if err := s.f.RemoveRow(name, index+2); err != nil {
		return fmt.Errorf("eliminar fila %d en %s: %w", index, name, err)
	}
	return s.save()
}

// EnsureTable agrega la hoja con su cabecera si falta.
func (s *Store) EnsureTable(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(name) {
		return nil
	}
	if _, err := s.f.NewSheet(name); err != nil {
		return fmt.Errorf("crear hoja %s: %w", name, err)
	}
	if err := s.writeRow(name, 1, header); err != nil {
		return err
	}
	return s.save()
}
