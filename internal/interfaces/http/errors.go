package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/domain"
)

// Códigos de error del cuerpo {"error", "code"}.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeTableNotFound  = "TABLE_NOT_FOUND"
	CodeDuplicate      = "DUPLICATE"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeTimeout        = "TIMEOUT"
	CodeUpstream       = "UPSTREAM"
	CodeUnknownAction  = "UNKNOWN_ACTION"
	CodeMethodNotAllow = "METHOD_NOT_ALLOWED"
	CodeInternal       = "INTERNAL"
)

// statusFor traduce el error de dominio a status HTTP y código.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTableNotFound):
		return fiber.StatusNotFound, CodeTableNotFound
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, CodeDuplicate
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, domain.ErrRequestTimeout), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, CodeTimeout
	case errors.Is(err, domain.ErrUpstream):
		return fiber.StatusBadGateway, CodeUpstream
	default:
		return fiber.StatusInternalServerError, CodeInternal
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	return c.Status(status).JSON(dto.ErrorResponse{Error: err.Error(), Code: code})
}

// ErrorHandler responde los errores no manejados de Fiber con el mismo cuerpo que las acciones.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusMethodNotAllowed:
			code = CodeMethodNotAllow
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
			code = CodeInvalidInput
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: fe.Message, Code: code})
	}
	return writeError(c, err)
}
