package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/query"
	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/application/relation"
	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/pkg/logger"
	"github.com/jhoicas/Obras-api/pkg/validator"
)

const maxIDAttempts = 5

var (
	obraTechnician query.Field[entity.WorkOrder] = func(o entity.WorkOrder) string { return o.Technician }
	obraAddress    query.Field[entity.WorkOrder] = func(o entity.WorkOrder) string { return o.Address }
	obraOrderType  query.Field[entity.WorkOrder] = func(o entity.WorkOrder) string { return o.OrderType }
	obraRegion     query.Field[entity.WorkOrder] = func(o entity.WorkOrder) string { return o.Region }
	obraDate       query.Field[entity.WorkOrder] = func(o entity.WorkOrder) string { return o.Date }
)

// ObraSettings reglas configurables de obras.
type ObraSettings struct {
	DecrementStock bool
	DefaultStatus  string
	IDPrefix       string
	Location       *time.Location
}

// ObraUseCase registra obras con sus materiales y las consulta con filtros.
type ObraUseCase struct {
	store     repository.TabularStore
	tx        repository.Transactor // nil si el backend no agrupa escrituras
	materials *MaterialUseCase
	settings  ObraSettings
	log       *logger.Logger
	now       func() time.Time
}

// NewObraUseCase construye el caso de uso. tx puede ser nil; log puede ser nil.
func NewObraUseCase(store repository.TabularStore, tx repository.Transactor, materials *MaterialUseCase, settings ObraSettings, log *logger.Logger) *ObraUseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.IDPrefix == "" {
		settings.IDPrefix = "OBRA"
	}
	if settings.DefaultStatus == "" {
		settings.DefaultStatus = entity.StatusCompleted
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ObraUseCase{
		store:     store,
		tx:        tx,
		materials: materials,
		settings:  settings,
		log:       log.Component("obras"),
		now:       time.Now,
	}
}

// List devuelve las obras que cumplen los filtros, cada una con sus materiales.
func (uc *ObraUseCase) List(ctx context.Context, in dto.ListObrasRequest) (*dto.ObraListResponse, error) {
	loc := uc.settings.Location
	datePred, err := query.Date(in.Date, in.DateFrom, in.DateTo, loc, obraDate)
	if err != nil {
		return nil, err
	}

	header, rows, err := uc.store.ListTable(ctx, sheets.Obras)
	if err != nil {
		return nil, err
	}
	orders := make([]entity.WorkOrder, 0, len(rows))
	for _, row := range rows {
		if blankPrefix(row, 3) {
			continue
		}
		orders = append(orders, sheets.WorkOrderFromRecord(records.ToRecord(header, row)))
	}

	filtered := query.Apply(orders,
		query.Contains(in.Address, obraAddress),
		query.Contains(in.Technician, obraTechnician),
		query.Equals(in.OrderType, obraOrderType),
		query.Equals(in.Region, obraRegion),
		datePred,
	)

	usageHeader, usageRows, err := uc.store.ListTable(ctx, sheets.MaterialUsages)
	if err != nil {
		return nil, err
	}
	usages := make([]entity.MaterialUsage, 0, len(usageRows))
	for _, row := range usageRows {
		usages = append(usages, sheets.UsageFromRecord(records.ToRecord(usageHeader, row)))
	}
	idx := relation.IndexBy(usages, func(u entity.MaterialUsage) string { return u.OrderID })
	relation.Attach(filtered, func(o entity.WorkOrder) string { return o.ID }, idx,
		func(o *entity.WorkOrder, children []entity.MaterialUsage) { o.Materials = children })

	out := make([]dto.ObraResponse, 0, len(filtered))
	for _, o := range filtered {
		if t, ok := query.ParseDate(o.Date, loc); ok {
			o.Date = t.Format(sheets.DateLayout)
		}
		out = append(out, dto.NewObraResponse(o))
	}
	return &dto.ObraListResponse{Obras: out, Total: len(out)}, nil
}

// blankPrefix indica si las primeras n celdas están vacías.
func blankPrefix(row repository.Row, n int) bool {
	for i := 0; i < n && i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			return false
		}
	}
	return true
}

// Save registra la obra y sus líneas de material y, si está configurado, descuenta el stock.
// Con un Transactor todo corre en una transacción; sin él, lo ya escrito queda persistido
// aunque falle una escritura posterior.
func (uc *ObraUseCase) Save(ctx context.Context, in dto.SaveObraRequest) (*dto.SaveObraResponse, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	loc := uc.settings.Location
	now := uc.now().In(loc)

	date := now.Format(sheets.DateLayout)
	if in.Date != "" {
		t, ok := query.ParseDate(in.Date, loc)
		if !ok {
			return nil, fmt.Errorf("%w: data=%q no es una fecha", domain.ErrInvalidInput, in.Date)
		}
		date = t.Format(sheets.DateLayout)
	}
	status := in.Status
	if status == "" {
		status = uc.settings.DefaultStatus
	}

	unlock := uc.materials.locks.Lock(sheets.Obras)
	defer unlock()

	var (
		order     entity.WorkOrder
		movements []entity.MovementLogEntry
	)
	persist := func(store repository.TabularStore) error {
		movements = movements[:0]
		header, rows, err := store.ListTable(ctx, sheets.Obras)
		if err != nil {
			return err
		}
		keyCol := sheets.KeyColumn(header, sheets.ColObraID)
		taken := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			if keyCol < len(row) {
				taken[strings.TrimSpace(row[keyCol])] = struct{}{}
			}
		}

		id := in.ID
		if id != "" {
			if _, dup := taken[id]; dup {
				return fmt.Errorf("%w: obra %s ya existe", domain.ErrDuplicate, id)
			}
		} else if id, err = uc.newID(now.Year(), taken); err != nil {
			return err
		}

		order = entity.WorkOrder{
			ID:         id,
			Technician: in.Technician,
			Region:     in.Region,
			Address:    in.Address,
			Number:     in.Number,
			Complement: in.Complement,
			OrderType:  in.OrderType,
			Notes:      in.Notes,
			Date:       date,
			Status:     status,
		}
		if err := store.AppendRow(ctx, sheets.Obras, records.FromRecord(header, sheets.WorkOrderToRecord(order), nil)); err != nil {
			return err
		}

		usageHeader, _, err := store.ListTable(ctx, sheets.MaterialUsages)
		if err != nil {
			return err
		}
		order.Materials = make([]entity.MaterialUsage, 0, len(in.Materials))
		for _, line := range in.Materials {
			usage := entity.MaterialUsage{
				OrderID:     id,
				Region:      in.Region,
				Address:     in.Address,
				Number:      in.Number,
				SKU:         line.SKU,
				Description: line.Description,
				Unit:        line.Unit,
				Quantity:    line.Quantity,
				UsageDate:   date,
			}
			row := records.FromRecord(usageHeader, sheets.UsageToRecord(usage), sheets.UsageDefaults)
			if err := store.AppendRow(ctx, sheets.MaterialUsages, row); err != nil {
				return fmt.Errorf("obra %s: guardar material %s: %w", id, line.SKU, err)
			}
			order.Materials = append(order.Materials, usage)
		}

		if !uc.settings.DecrementStock {
			return nil
		}
		return uc.decrementStock(ctx, store, order, in.Actor, &movements)
	}

	var err error
	if uc.tx != nil {
		err = uc.tx.RunInTx(ctx, persist)
	} else {
		err = persist(uc.store)
	}
	if err != nil {
		return nil, err
	}
	for _, m := range movements {
		uc.materials.audit.Movement(ctx, m)
	}

	uc.log.Info().Str("obra_id", order.ID).Int("materiais", len(order.Materials)).Msg("obra registrada")
	return &dto.SaveObraResponse{
		Message:      "Obra salva com sucesso",
		ObraID:       order.ID,
		ObraIDCompat: order.ID,
		Date:         date,
	}, nil
}

// decrementStock descuenta cada línea del catálogo. Un SKU que no está en el catálogo se omite.
func (uc *ObraUseCase) decrementStock(ctx context.Context, store repository.TabularStore, order entity.WorkOrder, actor string, movements *[]entity.MovementLogEntry) error {
	unlock := uc.materials.locks.Lock(sheets.Materials)
	defer unlock()

	reason := "Obra " + order.ID
	for _, u := range order.Materials {
		entry, err := uc.materials.adjust(ctx, store, u.SKU, sheets.QuantityDelta(u.Quantity), reason, actor)
		if err != nil {
			if isNotFound(err) {
				uc.log.Warn().Str("obra_id", order.ID).Str("sku", u.SKU).Msg("material fuera del catálogo, stock sin descontar")
				continue
			}
			return fmt.Errorf("obra %s: descontar %s: %w", order.ID, u.SKU, err)
		}
		*movements = append(*movements, entry)
	}
	return nil
}

// newID genera <prefijo>-<año>-<5 hex en mayúsculas> sin repetir uno existente.
func (uc *ObraUseCase) newID(year int, taken map[string]struct{}) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
		id := fmt.Sprintf("%s-%d-%s", uc.settings.IDPrefix, year, suffix)
		if _, dup := taken[id]; !dup {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no se pudo generar un obra_id libre", domain.ErrDuplicate)
}
