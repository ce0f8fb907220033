package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
)

var errBoom = errors.New("fallo de escritura simulado")

// faultyStore falla AppendRow en las hojas indicadas.
type faultyStore struct {
	*memory.Store
	mu         sync.Mutex
	failAppend map[string]bool
}

func (f *faultyStore) AppendRow(ctx context.Context, name string, row repository.Row) error {
	f.mu.Lock()
	fail := f.failAppend[name]
	f.mu.Unlock()
	if fail {
		return errBoom
	}
	return f.Store.AppendRow(ctx, name, row)
}

// recordingTx ejecuta fn sobre el store y cuenta las transacciones.
type recordingTx struct {
	store repository.TabularStore
	calls int
}

func (r *recordingTx) RunInTx(_ context.Context, fn func(repository.TabularStore) error) error {
	r.calls++
	return fn(r.store)
}

var fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func seededStore() *memory.Store {
	s := memory.NewStore()
	s.Seed(sheets.Materials, sheets.MaterialHeader,
		repository.Row{"0001-0001-1", "Cabo", "MT", "50", "Interno"},
		repository.Row{"0002-0002-2", "Fita isolante", "UN", "3", "Externo"},
		repository.Row{"0003-0003-3", "Conector elétrico", "UN", "12", ""},
		repository.Row{"", "fila sin SKU", "UN", "1", "Interno"},
	)
	s.Seed(sheets.Obras, sheets.ObraHeader)
	s.Seed(sheets.MaterialUsages, sheets.UsageHeader)
	return s
}

type fixture struct {
	store     repository.TabularStore
	mem       *memory.Store
	materials *MaterialUseCase
	obras     *ObraUseCase
	failures  []string
}

func newFixture(t *testing.T, store repository.TabularStore, mem *memory.Store, tx repository.Transactor) *fixture {
	t.Helper()
	f := &fixture{store: store, mem: mem}
	audit := NewAuditLog(store, time.UTC, nil, func(sheet string) { f.failures = append(f.failures, sheet) })
	f.materials = NewMaterialUseCase(store, audit)
	f.materials.now = func() time.Time { return fixedNow }
	f.obras = NewObraUseCase(store, tx, f.materials, ObraSettings{DecrementStock: true, Location: time.UTC}, nil)
	f.obras.now = func() time.Time { return fixedNow }
	return f
}

func defaultFixture(t *testing.T) *fixture {
	mem := seededStore()
	return newFixture(t, mem, mem, nil)
}

func rowsOf(t *testing.T, store repository.TabularStore, sheet string) []repository.Row {
	t.Helper()
	_, rows, err := store.ListTable(context.Background(), sheet)
	require.NoError(t, err)
	return rows
}
