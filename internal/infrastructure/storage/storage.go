// Package storage abre el backend de hojas configurado (memoria, xlsx o PostgreSQL).
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
	"github.com/jhoicas/Obras-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Obras-api/internal/infrastructure/xlsx"
	"github.com/jhoicas/Obras-api/pkg/config"
	"github.com/jhoicas/Obras-api/pkg/logger"
)

// Backend store abierto. Tx es nil cuando el backend no soporta transacciones.
type Backend struct {
	Store repository.TabularStore
	Tx    repository.Transactor
	Close func()
}

// Open abre el backend indicado en cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		log.Warn().Msg("backend en memoria: los datos se pierden al reiniciar")
		return &Backend{Store: memory.NewStore(), Close: func() {}}, nil

	case config.BackendXLSX:
		s, err := xlsx.Open(cfg.Storage.XLSXPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Storage.XLSXPath).Msg("libro xlsx abierto")
		return &Backend{Store: s, Close: func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar libro xlsx")
			}
		}}, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("migraciones aplicadas")
		}
		log.Info().Msg("conexión a base de datos establecida")
		return &Backend{
			Store: postgres.NewTabularStore(pool),
			Tx:    postgres.NewTxRunner(pool),
			Close: pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("backend de almacenamiento desconocido: %q", cfg.Storage.Backend)
}

// Bootstrap crea las hojas conocidas que falten con su cabecera canónica.
func Bootstrap(ctx context.Context, store repository.TabularStore) error {
	for name, header := range sheets.Headers() {
		if err := store.EnsureTable(ctx, name, header); err != nil {
			return fmt.Errorf("crear hoja %s: %w", name, err)
		}
	}
	return nil
}
