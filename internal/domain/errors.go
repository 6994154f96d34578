package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrValidation         = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrWrongPassword      = errors.New("contraseña actual incorrecta")

	// Flujo de autenticación del cliente.
	ErrNoCompanySelected = fmt.Errorf("%w: debe seleccionar una empresa primero", ErrValidation)
	ErrCompanyNotFound   = errors.New("empresa no encontrada")
	ErrTransport         = errors.New("error de conexión con el servidor")
	ErrSessionExpired    = errors.New("sesión expirada")
	ErrCorruptedState    = errors.New("estado persistido corrupto")
	ErrInvalidResponse   = errors.New("respuesta del servidor inválida")
)

// Mensajes de login por código de estado HTTP.
var loginMessages = map[int]string{
	400: "Datos de login inválidos",
	401: "Credenciales incorrectas",
	403: "Usuario inactivo o sin permisos",
	404: "Usuario no encontrado",
	422: "Datos de validación incorrectos",
	500: "Error interno del servidor",
}

// CredentialError rechazo del login con código de estado (401/403/404/422...).
type CredentialError struct {
	Status  int
	Message string // mensaje para el usuario, ya mapeado
}

// NewCredentialError mapea el estado a la tabla fija de mensajes.
// Para 400 y estados desconocidos prevalece el mensaje del servidor si existe.
func NewCredentialError(status int, serverMessage string) *CredentialError {
	serverMessage = strings.TrimSpace(serverMessage)
	msg, ok := loginMessages[status]
	switch {
	case status == 400 && serverMessage != "":
		msg = serverMessage
	case !ok && serverMessage != "":
		msg = serverMessage
	case !ok:
		msg = "Error al iniciar sesión"
	}
	return &CredentialError{Status: status, Message: msg}
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("login rechazado (%d): %s", e.Status, e.Message)
}

// LoginMessage devuelve el mensaje visible para un error de login.
func LoginMessage(err error) string {
	var ce *CredentialError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ce):
		return ce.Message
	case errors.Is(err, ErrNoCompanySelected):
		return "Debe seleccionar una empresa primero"
	case errors.Is(err, ErrTransport):
		return "Error de conexión con el servidor"
	case errors.Is(err, ErrInvalidResponse):
		return "Respuesta del servidor inválida"
	case errors.Is(err, ErrValidation):
		return "Correo y contraseña son requeridos"
	default:
		return "Error al iniciar sesión. Intente nuevamente."
	}
}
