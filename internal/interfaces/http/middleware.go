package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Obras-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Obras-api/pkg/logger"
)

// Locals keys.
const (
	LocalAction    = "action"
	LocalActor     = "actor"
	LocalRequestID = "request_id"
)

// HeaderRequestID header de correlación.
const HeaderRequestID = "X-Request-ID"

// ActorMiddleware toma el usuario del header indicado (p. ej. X-User-Email) y lo guarda en c.Locals.
// Sin header el actor queda vacío y la auditoría usa el del payload o "anonymous".
func ActorMiddleware(header string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if header != "" {
			if actor := strings.TrimSpace(c.Get(header)); actor != "" {
				c.Locals(LocalActor, actor)
			}
		}
		return c.Next()
	}
}

// RequestID reutiliza X-Request-ID si viene o genera uno nuevo.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// RequestLogger registra una línea por petición (método, acción, status, latencia).
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("action", GetAction(c)).
			Str("request_id", localString(c, LocalRequestID)).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

// Observe alimenta las métricas por acción.
func Observe(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		action := GetAction(c)
		if action == "" {
			action = "none"
		}
		m.ObserveRequest(action, strconv.Itoa(c.Response().StatusCode()), time.Since(start).Seconds())
		return err
	}
}

// GetAction devuelve la acción despachada (después del handler).
func GetAction(c *fiber.Ctx) string {
	return localString(c, LocalAction)
}

// GetActor devuelve el usuario identificado por ActorMiddleware.
func GetActor(c *fiber.Ctx) string {
	return localString(c, LocalActor)
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
