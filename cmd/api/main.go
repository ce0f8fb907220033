package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	"github.com/jhoicas/Obras-api/docs"
	"github.com/jhoicas/Obras-api/internal/application/usecase"
	"github.com/jhoicas/Obras-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Obras-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Obras-api/internal/interfaces/http"
	"github.com/jhoicas/Obras-api/pkg/config"
	"github.com/jhoicas/Obras-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer backend.Close()

	if err := storage.Bootstrap(ctx, backend.Store); err != nil {
		log.Fatal().Err(err).Msg("crear hojas")
	}

	var m *metrics.Metrics
	onAuditFailure := func(string) {}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		onAuditFailure = m.AuditFailure
	}

	loc := cfg.App.Location()
	audit := usecase.NewAuditLog(backend.Store, loc, log.Component("audit"), onAuditFailure)
	materialUC := usecase.NewMaterialUseCase(backend.Store, audit)
	obraUC := usecase.NewObraUseCase(backend.Store, backend.Tx, materialUC, usecase.ObraSettings{
		DecrementStock: cfg.Obras.DecrementStock,
		DefaultStatus:  cfg.Obras.DefaultStatus,
		IDPrefix:       cfg.Obras.IDPrefix,
		Location:       loc,
	}, log.Component("obras"))

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	// Swagger UI en local: http://localhost:<port>/docs (documento embebido)
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: docs.Swagger,
		Path:        "docs",
		Title:       "Obras API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		MaterialUC:  materialUC,
		ObraUC:      obraUC,
		Log:         log,
		Metrics:     m,
		ActorHeader: cfg.Obras.ActorHeader,
		AppName:     cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
