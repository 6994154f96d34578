package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Refresher renovación de token compartida entre llamadores concurrentes.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Transport peticiones autenticadas: añade el Bearer de la sesión y ante un 401 renueva el
// token una vez y reintenta, salvo que el 401 sea por contraseña actual incorrecta. Si la renovación falla devuelve su error (domain.ErrSessionExpired).
type Transport struct {
	client    *Client
	tokens    TokenSource
	refresher Refresher
	log       zerolog.Logger
}

// NewTransport construye el transporte. refresher nil desactiva el reintento.
func NewTransport(client *Client, tokens TokenSource, refresher Refresher, log zerolog.Logger) *Transport {
	return &Transport{
		client:    client,
		tokens:    tokens,
		refresher: refresher,
		log:       log.With().Str("component", "transport").Logger(),
	}
}

// Do ejecuta la petición autenticada.
func (t *Transport) Do(ctx context.Context, method, path string, in, out any) error {
	err := t.client.Do(ctx, method, path, t.tokens.Token(ctx), in, out)
	if statusOf(err) != http.StatusUnauthorized || t.refresher == nil || codeOf(err) == CodeWrongPassword {
		return err
	}

	t.log.Info().Str("path", path).Msg("401 recibido, renovando token")
	tok, rerr := t.refresher.Refresh(ctx)
	if rerr != nil {
		return rerr
	}
	return t.client.Do(ctx, method, path, tok, in, out)
}
