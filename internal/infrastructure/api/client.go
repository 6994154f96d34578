// Package api implementa los puertos del cliente contra el backend REST de hallazgos.
// Usa net/http de la librería estándar; cada petición lleva un X-Request-ID.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/domain"
)

// HeaderRequestID cabecera de correlación enviada en cada petición.
const HeaderRequestID = "X-Request-ID"

// CodeWrongPassword código de un 401 por contraseña actual incorrecta.
const CodeWrongPassword = "WRONG_PASSWORD"

const maxBody = 1 << 20

// APIError respuesta no 2xx del backend.
type APIError struct {
	Status        int
	Code          string
	Message       string // mensaje para el usuario
	ServerMessage string // mensaje original del backend, si vino
}

var apiMessages = map[int]struct{ code, msg string }{
	401: {"UNAUTHORIZED", "Sesión expirada. Por favor inicie sesión nuevamente."},
	403: {"FORBIDDEN", "No tiene permisos para realizar esta acción."},
	404: {"NOT_FOUND", "Recurso no encontrado."},
	422: {"VALIDATION_ERROR", "Error de validación. Verifique los datos ingresados."},
	500: {"SERVER_ERROR", "Error interno del servidor. Por favor intente más tarde."},
}

func newAPIError(status int, body errorBody) *APIError {
	e := &APIError{Status: status, Code: body.Code, ServerMessage: strings.TrimSpace(body.Message)}
	if m, ok := apiMessages[status]; ok {
		e.Message = m.msg
		if e.Code == "" {
			e.Code = m.code
		}
		return e
	}
	e.Message = e.ServerMessage
	if e.Message == "" {
		e.Message = "Error desconocido"
	}
	if e.Code == "" {
		e.Code = "UNKNOWN_ERROR"
	}
	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap relaciona el estado con los errores de dominio para errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

// errorBody cuerpo de error del backend.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client cliente HTTP base. No sabe de sesiones: el token lo pasa quien llama.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient construye el cliente. timeout <= 0 usa 10 s.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "api").Logger(),
	}
}

// Do envía la petición y decodifica la respuesta 2xx en out (si no es nil).
// Sin respuesta devuelve un error que envuelve domain.ErrTransport; con estado no 2xx, *APIError.
func (c *Client) Do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: serializar petición: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: crear petición: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("request_id", reqID).Str("method", method).Str("path", path).Msg("petición sin respuesta")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", domain.ErrTransport, ctxErr)
		}
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrTransport, err)
	}
	c.log.Debug().Str("request_id", reqID).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("latencia", time.Since(start)).Msg("petición completada")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorBody
		_ = json.Unmarshal(raw, &e)
		return newAPIError(resp.StatusCode, e)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	return nil
}

// statusOf devuelve el estado HTTP de un *APIError (0 si no lo es).
func statusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// codeOf devuelve el código de un *APIError ("" si no lo es).
func codeOf(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
