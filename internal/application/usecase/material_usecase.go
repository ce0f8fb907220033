package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/query"
	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/pkg/validator"
)

var (
	materialSKU         query.Field[entity.Material] = func(m entity.Material) string { return m.SKU }
	materialDescription query.Field[entity.Material] = func(m entity.Material) string { return m.Description }
	materialCategory    query.Field[entity.Material] = func(m entity.Material) string { return m.Category }
)

// MaterialUseCase casos de uso del catálogo de materiales (hoja Materiais).
// Las mutaciones se serializan por hoja: los índices de fila cambian al eliminar.
type MaterialUseCase struct {
	store repository.TabularStore
	audit *AuditLog
	locks *keyedMutex
	now   func() time.Time
}

// NewMaterialUseCase construye el caso de uso. audit puede ser nil.
func NewMaterialUseCase(store repository.TabularStore, audit *AuditLog) *MaterialUseCase {
	return &MaterialUseCase{store: store, audit: audit, locks: newKeyedMutex(), now: time.Now}
}

// catalog lee la hoja y descarta filas sin SKU.
func catalog(ctx context.Context, store repository.TabularStore) ([]entity.Material, error) {
	header, rows, err := store.ListTable(ctx, sheets.Materials)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Material, 0, len(rows))
	for _, row := range rows {
		m := sheets.MaterialFromRecord(records.ToRecord(header, row))
		if m.SKU == "" {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func toMaterialResponses(list []entity.Material) []dto.MaterialResponse {
	out := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMaterialResponse(m))
	}
	return out
}

// List devuelve el catálogo completo, opcionalmente filtrado por categoría ("all"/"todos" = todas).
func (uc *MaterialUseCase) List(ctx context.Context, category string) (*dto.MaterialListResponse, error) {
	list, err := catalog(ctx, uc.store)
	if err != nil {
		return nil, err
	}
	if cat, ok := sheets.NormalizeCategory(category); ok {
		category = cat
	}
	list = query.Apply(list, query.Equals(category, materialCategory))
	return &dto.MaterialListResponse{Materials: toMaterialResponses(list)}, nil
}

// Search busca por SKU o descripción (sin acentos) y pagina el resultado.
func (uc *MaterialUseCase) Search(ctx context.Context, in dto.SearchMaterialsRequest) (*dto.MaterialSearchResponse, error) {
	list, err := catalog(ctx, uc.store)
	if err != nil {
		return nil, err
	}
	filtered := query.Apply(list, query.Contains(in.Term, materialSKU, materialDescription))
	page := query.Paginate(filtered, in.Start, in.Limit)
	return &dto.MaterialSearchResponse{
		Materials: toMaterialResponses(page.Items),
		Meta: dto.PageMeta{
			Count:  len(page.Items),
			Start:  page.Start,
			Limit:  page.Limit,
			Total:  page.Total,
			Search: in.Term,
		},
	}, nil
}

// ByCategory devuelve los materiales de una categoría. La categoría es obligatoria.
func (uc *MaterialUseCase) ByCategory(ctx context.Context, category string) (*dto.MaterialsByCategoryResponse, error) {
	if query.IsSentinel(category) {
		return nil, fmt.Errorf("%w: categoria requerida", domain.ErrInvalidInput)
	}
	list, err := catalog(ctx, uc.store)
	if err != nil {
		return nil, err
	}
	if cat, ok := sheets.NormalizeCategory(category); ok {
		category = cat
	}
	list = query.Apply(list, query.Equals(category, materialCategory))
	return &dto.MaterialsByCategoryResponse{
		OK:   true,
		Data: toMaterialResponses(list),
		Meta: dto.CountMeta{Count: len(list)},
	}, nil
}

// Add agrega un material. Falla con ErrDuplicate si el SKU ya existe.
func (uc *MaterialUseCase) Add(ctx context.Context, in dto.AddMaterialRequest) (*dto.AddMaterialResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	unlock := uc.locks.Lock(sheets.Materials)
	defer unlock()

	header, _, err := uc.store.ListTable(ctx, sheets.Materials)
	if err != nil {
		return nil, err
	}
	_, err = uc.store.FindRowIndexByKey(ctx, sheets.Materials, sheets.KeyColumn(header, sheets.ColSKU), in.SKU)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: SKU %s ya existe", domain.ErrDuplicate, in.SKU)
	case !isNotFound(err):
		return nil, err
	}

	m := entity.Material{
		SKU:           in.SKU,
		Description:   in.Description,
		Unit:          in.Unit,
		StockQuantity: in.StockQuantity,
		Category:      in.Category,
	}
	row := records.FromRecord(header, sheets.MaterialToRecord(m), sheets.MaterialDefaults)
	if err := uc.store.AppendRow(ctx, sheets.Materials, row); err != nil {
		return nil, err
	}
	return &dto.AddMaterialResponse{OK: true, Message: "Material adicionado com sucesso", SKU: m.SKU}, nil
}

// located fila de material encontrada por SKU.
type located struct {
	header []string
	index  int
	rec    records.Record
}

func findMaterial(ctx context.Context, store repository.TabularStore, sku string) (*located, error) {
	header, rows, err := store.ListTable(ctx, sheets.Materials)
	if err != nil {
		return nil, err
	}
	idx, err := store.FindRowIndexByKey(ctx, sheets.Materials, sheets.KeyColumn(header, sheets.ColSKU), sku)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(rows) {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, sku)
	}
	return &located{header: header, index: idx, rec: records.ToRecord(header, rows[idx])}, nil
}

// Update aplica solo los campos no vacíos; el resto de la fila se conserva.
func (uc *MaterialUseCase) Update(ctx context.Context, in dto.UpdateMaterialRequest) (*dto.OKResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	unlock := uc.locks.Lock(sheets.Materials)
	defer unlock()

	found, err := findMaterial(ctx, uc.store, in.SKU)
	if err != nil {
		return nil, err
	}
	before := sheets.MaterialFromRecord(found.rec)
	if in.Description != "" {
		found.rec[sheets.ColDescription] = in.Description
	}
	if in.Unit != "" {
		found.rec[sheets.ColUnit] = in.Unit
	}
	if in.Category != "" {
		found.rec[sheets.ColCategory] = in.Category
	}
	if in.StockQuantity != nil {
		found.rec[sheets.ColStock] = strconv.FormatInt(*in.StockQuantity, 10)
	}
	row := records.FromRecord(found.header, found.rec, sheets.MaterialDefaults)
	if err := uc.store.UpdateRow(ctx, sheets.Materials, found.index, row); err != nil {
		return nil, err
	}
	if in.StockQuantity != nil && *in.StockQuantity != before.StockQuantity {
		uc.audit.Movement(ctx, entity.MovementLogEntry{
			At:       uc.now(),
			SKU:      before.SKU,
			Delta:    *in.StockQuantity - before.StockQuantity,
			Previous: before.StockQuantity,
			Current:  *in.StockQuantity,
			Reason:   "Edição de material",
			Actor:    in.Actor,
		})
	}
	return &dto.OKResponse{OK: true, Message: "Material atualizado com sucesso"}, nil
}

// Increment suma delta al stock con piso en cero y registra el movimiento.
func (uc *MaterialUseCase) Increment(ctx context.Context, in dto.IncrementMaterialRequest) (*dto.IncrementMaterialResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	unlock := uc.locks.Lock(sheets.Materials)
	defer unlock()

	entry, err := uc.adjust(ctx, uc.store, in.SKU, in.Delta, in.Reason, in.Actor)
	if err != nil {
		return nil, err
	}
	uc.audit.Movement(ctx, entry)
	return &dto.IncrementMaterialResponse{OK: true, Message: "Quantidade atualizada com sucesso", NewQty: entry.Current}, nil
}

// adjust aplica delta sobre store sin tomar locks; el llamador registra la auditoría.
func (uc *MaterialUseCase) adjust(ctx context.Context, store repository.TabularStore, sku string, delta int64, reason, actor string) (entity.MovementLogEntry, error) {
	found, err := findMaterial(ctx, store, sku)
	if err != nil {
		return entity.MovementLogEntry{}, err
	}
	m := sheets.MaterialFromRecord(found.rec)
	next := m.ApplyDelta(delta)
	found.rec[sheets.ColStock] = strconv.FormatInt(next, 10)
	row := records.FromRecord(found.header, found.rec, sheets.MaterialDefaults)
	if err := store.UpdateRow(ctx, sheets.Materials, found.index, row); err != nil {
		return entity.MovementLogEntry{}, err
	}
	return entity.MovementLogEntry{
		At:       uc.now(),
		SKU:      m.SKU,
		Delta:    delta,
		Previous: m.StockQuantity,
		Current:  next,
		Reason:   reason,
		Actor:    actor,
	}, nil
}

// Delete registra la eliminación (best-effort) y luego borra la fila.
func (uc *MaterialUseCase) Delete(ctx context.Context, in dto.DeleteMaterialRequest) (*dto.OKResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	unlock := uc.locks.Lock(sheets.Materials)
	defer unlock()

	found, err := findMaterial(ctx, uc.store, in.SKU)
	if err != nil {
		return nil, err
	}
	m := sheets.MaterialFromRecord(found.rec)
	uc.audit.Deletion(ctx, entity.DeletionLogEntry{
		At:          uc.now(),
		SKU:         m.SKU,
		Description: m.Description,
		Reason:      in.Reason,
		Actor:       in.Actor,
	})
	if err := uc.store.DeleteRow(ctx, sheets.Materials, found.index); err != nil {
		return nil, err
	}
	return &dto.OKResponse{OK: true, Message: "Material excluído com sucesso"}, nil
}
