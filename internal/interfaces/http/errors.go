package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain"
)

// CodeWrongPassword código del 401 por contraseña actual incorrecta; no indica sesión vencida.
const CodeWrongPassword = "WRONG_PASSWORD"

// errorMessages mensajes genéricos por estado; el cliente muestra los mismos.
var errorMessages = map[int]string{
	fiber.StatusUnauthorized:        "Sesión expirada. Por favor inicie sesión nuevamente.",
	fiber.StatusForbidden:           "No tiene permisos para realizar esta acción.",
	fiber.StatusNotFound:            "Recurso no encontrado.",
	fiber.StatusUnprocessableEntity: "Error de validación. Verifique los datos ingresados.",
	fiber.StatusInternalServerError: "Error interno del servidor. Por favor intente más tarde.",
}

// respondError traduce un error de dominio a estado HTTP + ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrWrongPassword):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeWrongPassword, Message: "Contraseña actual incorrecta"})
	case errors.Is(err, domain.ErrValidation):
		status, code = fiber.StatusUnprocessableEntity, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: err.Error()})
	}
	msg := errorMessages[status]
	if status == fiber.StatusUnprocessableEntity {
		// El detalle de validación sí le sirve al usuario.
		msg = err.Error()
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
