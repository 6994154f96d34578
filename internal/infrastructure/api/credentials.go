package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/ports"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

var _ ports.Credentials = (*Credentials)(nil)

// Rutas de autenticación.
const (
	PathLogin   = "/api/auth/login"
	PathLogout  = "/api/auth/logout"
	PathRefresh = "/api/auth/refresh"
	PathMe      = "/api/auth/me"
)

// TokenSource token vigente de la sesión persistida.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Credentials adaptador de autenticación. No reintenta: un 401 aquí es definitivo.
type Credentials struct {
	client *Client
	tokens TokenSource
}

// NewCredentials construye el adaptador.
func NewCredentials(client *Client, tokens TokenSource) *Credentials {
	return &Credentials{client: client, tokens: tokens}
}

// Login envía correo, password y empresa. Los rechazos se traducen a *domain.CredentialError.
func (c *Credentials) Login(ctx context.Context, email, password string, companyID int64) (*ports.LoginGrant, error) {
	var resp dto.LoginResponse
	in := dto.LoginRequest{Email: email, Password: password, CompanyID: companyID}
	if err := c.client.Do(ctx, http.MethodPost, PathLogin, "", in, &resp); err != nil {
		var ae *APIError
		if errors.As(err, &ae) {
			return nil, domain.NewCredentialError(ae.Status, ae.ServerMessage)
		}
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, domain.ErrInvalidResponse
	}
	user := resp.User.ToEntity()
	if user.CompanyID == 0 {
		user.CompanyID = companyID
	}
	return &ports.LoginGrant{
		Token:   resp.Token,
		User:    user,
		Company: resp.User.Company.ToEntity(),
		Message: resp.Message,
	}, nil
}

// Logout avisa al backend. Sin token no hay nada que cerrar.
func (c *Credentials) Logout(ctx context.Context) error {
	tok := c.tokens.Token(ctx)
	if tok == "" {
		return nil
	}
	return c.client.Do(ctx, http.MethodPost, PathLogout, tok, nil, nil)
}

// RefreshToken pide un token nuevo presentando el actual.
func (c *Credentials) RefreshToken(ctx context.Context) (string, error) {
	tok := c.tokens.Token(ctx)
	if tok == "" {
		return "", domain.ErrUnauthorized
	}
	var resp dto.RefreshResponse
	if err := c.client.Do(ctx, http.MethodPost, PathRefresh, tok, nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", domain.ErrInvalidResponse
	}
	return resp.Token, nil
}

// CurrentUser recarga el usuario del token vigente.
func (c *Credentials) CurrentUser(ctx context.Context) (*entity.User, error) {
	tok := c.tokens.Token(ctx)
	if tok == "" {
		return nil, domain.ErrUnauthorized
	}
	var resp dto.MeResponse
	if err := c.client.Do(ctx, http.MethodGet, PathMe, tok, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, domain.ErrInvalidResponse
	}
	return resp.User.ToEntity(), nil
}
