package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Obras-api/internal/application/usecase"
	"github.com/jhoicas/Obras-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Obras-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MaterialUC  *usecase.MaterialUseCase
	ObraUC      *usecase.ObraUseCase
	Log         *logger.Logger
	Metrics     *metrics.Metrics // nil desactiva /metrics
	ActorHeader string
	AppName     string
}

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name        string
	CORSOrigins string
}

// NewApp crea la aplicación Fiber con recover, CORS y el ErrorHandler JSON.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		// los valores de Ctx sobreviven a la petición (Locals, etiquetas de métricas)
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New())

	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-User-Email, X-Request-ID",
	}))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestID())
	app.Use(RequestLogger(log.Component("http")))
	if deps.Metrics != nil {
		app.Use(Observe(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Use(ActorMiddleware(deps.ActorHeader))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Superficie de acciones (compatible con el cliente web: ?action=...)
	h := NewActionHandler(deps.MaterialUC, deps.ObraUC)
	app.Get("/exec", h.Get)
	app.Post("/exec", h.Post)
}
