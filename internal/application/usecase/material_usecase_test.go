package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
)

func TestMaterialList_OmiteFilasSinSKUyFiltraCategoria(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()

	all, err := f.materials.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Materials, 3)
	assert.Equal(t, "Interno", all.Materials[2].Category, "categoría vacía se lee como Interno")

	ext, err := f.materials.List(ctx, "externo")
	require.NoError(t, err)
	require.Len(t, ext.Materials, 1)
	assert.Equal(t, "0002-0002-2", ext.Materials[0].SKU)

	todos, err := f.materials.List(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, todos.Materials, 3)
}

func TestMaterialList_CategoriaEnInglesComoByCategory(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()

	for _, cat := range []string{"Internal", "Interno", "interno"} {
		list, err := f.materials.List(ctx, cat)
		require.NoError(t, err)
		byCat, err := f.materials.ByCategory(ctx, cat)
		require.NoError(t, err)
		assert.Len(t, list.Materials, 2, cat)
		assert.Equal(t, len(list.Materials), byCat.Meta.Count, "getMaterials y getMaterialsByCategory coinciden: %s", cat)
	}

	ext, err := f.materials.List(ctx, "External")
	require.NoError(t, err)
	require.Len(t, ext.Materials, 1)
	assert.Equal(t, "0002-0002-2", ext.Materials[0].SKU)
}

func TestMaterialList_HojaInexistente(t *testing.T) {
	f := newFixture(t, memory.NewStore(), nil, nil)
	_, err := f.materials.List(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrTableNotFound)
}

func TestMaterialByCategory(t *testing.T) {
	f := defaultFixture(t)
	out, err := f.materials.ByCategory(context.Background(), "Interno")
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, 2, out.Meta.Count)

	_, err = f.materials.ByCategory(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMaterialSearch_SinAcentos(t *testing.T) {
	f := defaultFixture(t)
	out, err := f.materials.Search(context.Background(), dto.SearchMaterialsRequest{Term: "eletrico"})
	require.NoError(t, err)
	require.Len(t, out.Materials, 1)
	assert.Equal(t, "0003-0003-3", out.Materials[0].SKU)
	assert.Equal(t, dto.PageMeta{Count: 1, Start: 0, Limit: 10, Total: 1, Search: "eletrico"}, out.Meta)
}

func TestMaterialSearch_PaginasParticionanElResultado(t *testing.T) {
	mem := memory.NewStore()
	var rows []repository.Row
	for i := 0; i < 23; i++ {
		rows = append(rows, repository.Row{fmt.Sprintf("SKU-%02d", i), "Parafuso", "UN", "1", "Interno"})
	}
	mem.Seed(sheets.Materials, sheets.MaterialHeader, rows...)
	f := newFixture(t, mem, mem, nil)

	seen := map[string]int{}
	total := 0
	for start := 0; start < 30; start += 10 {
		page, err := f.materials.Search(context.Background(), dto.SearchMaterialsRequest{
			Term:        "parafuso",
			PageRequest: dto.PageRequest{Start: start, Limit: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, 23, page.Meta.Total)
		for _, m := range page.Materials {
			seen[m.SKU]++
		}
		total += page.Meta.Count
	}
	assert.Equal(t, 23, total)
	assert.Len(t, seen, 23, "sin huecos")
	for sku, n := range seen {
		assert.Equal(t, 1, n, "sin solapes: %s", sku)
	}
}

func TestMaterialSearch_StartMasAllaDelTotalSeDevuelve(t *testing.T) {
	f := defaultFixture(t)
	out, err := f.materials.Search(context.Background(), dto.SearchMaterialsRequest{
		Term:        "",
		PageRequest: dto.PageRequest{Start: 50, Limit: 10},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Materials)
	assert.Equal(t, dto.PageMeta{Count: 0, Start: 50, Limit: 10, Total: 3, Search: ""}, out.Meta)
}

func TestMaterialAdd(t *testing.T) {
	f := defaultFixture(t)
	in := dto.AddMaterialRequest{SKU: "0004-0004-4", Description: "Poste", Unit: "UN", Category: "Externo"}
	out, err := f.materials.Add(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "0004-0004-4", out.SKU)

	rows := rowsOf(t, f.store, sheets.Materials)
	assert.Equal(t, repository.Row{"0004-0004-4", "Poste", "UN", "0", "Externo"}, rows[len(rows)-1])
}

func TestMaterialAdd_DuplicadoNoCambiaLaTabla(t *testing.T) {
	f := defaultFixture(t)
	before := len(rowsOf(t, f.store, sheets.Materials))

	_, err := f.materials.Add(context.Background(), dto.AddMaterialRequest{SKU: "0001-0001-1", Description: "Otro", Unit: "UN", Category: "Interno"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, rowsOf(t, f.store, sheets.Materials), before)
}

func TestMaterialAdd_PayloadInvalido(t *testing.T) {
	f := defaultFixture(t)
	_, err := f.materials.Add(context.Background(), dto.AddMaterialRequest{SKU: "con espacio", Description: "x", Unit: "UN", Category: "Interno"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.materials.Add(context.Background(), dto.AddMaterialRequest{SKU: "A1", Unit: "UN", Category: "Interno"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "descrição es obligatoria")
}

func TestMaterialUpdate_Parcial(t *testing.T) {
	f := defaultFixture(t)
	_, err := f.materials.Update(context.Background(), dto.UpdateMaterialRequest{SKU: "0002-0002-2", Unit: "RL"})
	require.NoError(t, err)

	rows := rowsOf(t, f.store, sheets.Materials)
	assert.Equal(t, repository.Row{"0002-0002-2", "Fita isolante", "RL", "3", "Externo"}, rows[1])
	assert.Empty(t, rowsOrNil(f.mem, sheets.MovementLog), "sin cambio de stock no hay movimiento")
}

func TestMaterialUpdate_StockRegistraMovimiento(t *testing.T) {
	f := defaultFixture(t)
	qty := int64(8)
	_, err := f.materials.Update(context.Background(), dto.UpdateMaterialRequest{SKU: "0002-0002-2", StockQuantity: &qty, Actor: "ana"})
	require.NoError(t, err)

	log := rowsOf(t, f.store, sheets.MovementLog)
	require.Len(t, log, 1)
	assert.Equal(t, []string{"5", "3", "8"}, []string(log[0][2:5]))
}

func TestMaterialUpdate_NoEncontrado(t *testing.T) {
	f := defaultFixture(t)
	_, err := f.materials.Update(context.Background(), dto.UpdateMaterialRequest{SKU: "nao-existe", Unit: "UN"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMaterialIncrement_PisoEnCero(t *testing.T) {
	f := defaultFixture(t)
	ctx := context.Background()

	out, err := f.materials.Increment(ctx, dto.IncrementMaterialRequest{SKU: "0001-0001-1", Delta: -10})
	require.NoError(t, err)
	assert.Equal(t, int64(40), out.NewQty)

	out, err = f.materials.Increment(ctx, dto.IncrementMaterialRequest{SKU: "0001-0001-1", Delta: -100})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.NewQty, "el stock nunca queda negativo")

	log := rowsOf(t, f.store, sheets.MovementLog)
	require.Len(t, log, 2)
	assert.Equal(t, repository.Row{"2024-05-10 14:30:00", "0001-0001-1", "-100", "40", "0", "", "anonymous"}, log[1])
}

func TestMaterialIncrement_Propiedad(t *testing.T) {
	for _, delta := range []int64{-1000, -51, -50, -1, 0, 1, 7, 1000} {
		t.Run(fmt.Sprintf("delta=%d", delta), func(t *testing.T) {
			f := defaultFixture(t)
			out, err := f.materials.Increment(context.Background(), dto.IncrementMaterialRequest{SKU: "0001-0001-1", Delta: delta})
			require.NoError(t, err)
			assert.Equal(t, max(0, 50+delta), out.NewQty)
		})
	}
}

func TestMaterialIncrement_NoEncontrado(t *testing.T) {
	f := defaultFixture(t)
	_, err := f.materials.Increment(context.Background(), dto.IncrementMaterialRequest{SKU: "X", Delta: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMaterialIncrement_Concurrente(t *testing.T) {
	f := defaultFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.materials.Increment(context.Background(), dto.IncrementMaterialRequest{SKU: "0002-0002-2", Delta: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	rows := rowsOf(t, f.store, sheets.Materials)
	assert.Equal(t, "43", rows[1][3])
}

func TestMaterialDelete_RegistraYElimina(t *testing.T) {
	f := defaultFixture(t)
	_, err := f.materials.Delete(context.Background(), dto.DeleteMaterialRequest{SKU: "0002-0002-2", Reason: "descontinuado", Actor: "ana@empresa.com"})
	require.NoError(t, err)

	rows := rowsOf(t, f.store, sheets.Materials)
	assert.Len(t, rows, 3)
	assert.Equal(t, "0003-0003-3", rows[1][0], "las filas siguientes suben una posición")

	log := rowsOf(t, f.store, sheets.DeletionLog)
	require.Len(t, log, 1)
	assert.Equal(t, repository.Row{"2024-05-10 14:30:00", "0002-0002-2", "Fita isolante", "descontinuado", "ana@empresa.com"}, log[0])
}

func TestMaterialDelete_NoEncontradoNoCambiaLaTabla(t *testing.T) {
	f := defaultFixture(t)
	_, err := f.materials.Delete(context.Background(), dto.DeleteMaterialRequest{SKU: "9999-9999-9"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, rowsOf(t, f.store, sheets.Materials), 4)
}

func TestMaterialDelete_FalloDeAuditoriaNoBloquea(t *testing.T) {
	mem := seededStore()
	store := &faultyStore{Store: mem, failAppend: map[string]bool{sheets.DeletionLog: true}}
	f := newFixture(t, store, mem, nil)

	_, err := f.materials.Delete(context.Background(), dto.DeleteMaterialRequest{SKU: "0001-0001-1"})
	require.NoError(t, err)
	assert.Len(t, rowsOf(t, mem, sheets.Materials), 3)
	assert.Equal(t, []string{sheets.DeletionLog}, f.failures)
}

func rowsOrNil(mem *memory.Store, sheet string) []repository.Row {
	_, rows, err := mem.ListTable(context.Background(), sheet)
	if err != nil {
		return nil
	}
	return rows
}

func TestMaterial_SKUConEspaciosEditadoAMano(t *testing.T) {
	mem := memory.NewStore()
	mem.Seed(sheets.Materials, sheets.MaterialHeader,
		repository.Row{"0001-0001-1 ", "Cabo", "MT", "50", "Interno"},
	)
	f := newFixture(t, mem, mem, nil)
	ctx := context.Background()

	list, err := f.materials.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list.Materials, 1)
	assert.Equal(t, "0001-0001-1", list.Materials[0].SKU)

	inc, err := f.materials.Increment(ctx, dto.IncrementMaterialRequest{SKU: "0001-0001-1", Delta: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(55), inc.NewQty)

	_, err = f.materials.Add(ctx, dto.AddMaterialRequest{SKU: "0001-0001-1", Description: "Cabo", Unit: "MT", Category: "Interno"})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "la fila con espacios cuenta como existente")

	_, err = f.materials.Delete(ctx, dto.DeleteMaterialRequest{SKU: "0001-0001-1"})
	require.NoError(t, err)
	assert.Empty(t, rowsOf(t, mem, sheets.Materials))
}
