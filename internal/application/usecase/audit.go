package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/pkg/logger"
)

// AnonymousActor se registra cuando la petición no identifica al usuario.
const AnonymousActor = "anonymous"

// AuditLog escribe en las hojas de auditoría. Es best-effort: un fallo se registra en el log
// y en onFailure, pero nunca llega al llamador ni bloquea la mutación principal.
type AuditLog struct {
	store     repository.TabularStore
	loc       *time.Location
	log       *logger.Logger
	onFailure func(sheet string)
}

// NewAuditLog construye el registro de auditoría. onFailure puede ser nil.
func NewAuditLog(store repository.TabularStore, loc *time.Location, log *logger.Logger, onFailure func(sheet string)) *AuditLog {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuditLog{store: store, loc: loc, log: log.Component("audit"), onFailure: onFailure}
}

// Movement registra un cambio de stock.
func (a *AuditLog) Movement(ctx context.Context, e entity.MovementLogEntry) {
	if a == nil {
		return
	}
	e.Actor = actorOrAnonymous(e.Actor)
	a.write(ctx, sheets.MovementLog, sheets.MovementHeader, sheets.MovementToRecord(e, a.loc))
}

// Deletion registra la eliminación de un material.
func (a *AuditLog) Deletion(ctx context.Context, e entity.DeletionLogEntry) {
	if a == nil {
		return
	}
	e.Actor = actorOrAnonymous(e.Actor)
	a.write(ctx, sheets.DeletionLog, sheets.DeletionHeader, sheets.DeletionToRecord(e, a.loc))
}

func (a *AuditLog) write(ctx context.Context, sheet string, header []string, rec records.Record) {
	if a.store == nil {
		return
	}
	err := a.store.EnsureTable(ctx, sheet, header)
	if err == nil {
		err = a.store.AppendRow(ctx, sheet, records.FromRecord(header, rec, nil))
	}
	if err != nil {
		a.log.Warn().Err(err).Str("sheet", sheet).Msg("no se pudo registrar auditoría")
		if a.onFailure != nil {
			a.onFailure(sheet)
		}
	}
}

func actorOrAnonymous(actor string) string {
	if actor == "" {
		return AnonymousActor
	}
	return actor
}
