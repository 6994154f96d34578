// Package token verifica localmente la sesión y coordina la renovación del token.
package token

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// DefaultMaxAge ventana local de validez de una sesión desde el login.
const DefaultMaxAge = 24 * time.Hour

const flightKey = "refresh"

// Refresher pide un token nuevo al backend. Lo implementa el adaptador de credenciales.
type Refresher interface {
	RefreshToken(ctx context.Context) (string, error)
}

// VerifyResult resultado de la verificación local.
type VerifyResult struct {
	Valid bool
	User  *entity.User
}

// Gateway verifica la sesión sin red y deduplica renovaciones concurrentes:
// mientras hay una renovación en curso, los nuevos llamadores esperan su resultado.
type Gateway struct {
	store     *session.Store
	refresher Refresher
	maxAge    time.Duration
	now       func() time.Time
	log       zerolog.Logger

	group      singleflight.Group
	refreshing atomic.Bool
	waiters    atomic.Int32
}

// Option configura el Gateway.
type Option func(*Gateway)

// WithMaxAge cambia la ventana de validez local (por defecto 24h).
func WithMaxAge(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.maxAge = d
		}
	}
}

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithLogger asigna el logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// New construye el gateway.
func New(store *session.Store, refresher Refresher, opts ...Option) *Gateway {
	g := &Gateway{
		store:     store,
		refresher: refresher,
		maxAge:    DefaultMaxAge,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With().Str("component", "token").Logger()
	return g
}

// Verify valida la sesión persistida sin tocar la red: token y usuario presentes y
// login hace menos de maxAge. Sin hora de login legible la sesión no es válida.
func (g *Gateway) Verify(ctx context.Context) VerifyResult {
	s := g.store.Load(ctx)
	if !s.IsAuthenticated() {
		return VerifyResult{}
	}
	if s.LoginTime == nil {
		g.log.Warn().Msg("sesión sin hora de login, no se puede verificar")
		return VerifyResult{}
	}
	if age := g.now().Sub(*s.LoginTime); age >= g.maxAge {
		g.log.Info().Dur("edad", age).Msg("sesión expirada por tiempo")
		return VerifyResult{}
	}
	return VerifyResult{Valid: true, User: s.User}
}

// Refresh obtiene un token nuevo. Las llamadas concurrentes comparten una única petición
// al backend y reciben el mismo resultado. Si la renovación falla la sesión se limpia y
// todos reciben un error que envuelve domain.ErrSessionExpired.
//
// Cancelar ctx solo deja de esperar: la renovación en curso continúa para los demás.
func (g *Gateway) Refresh(ctx context.Context) (string, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := g.group.DoChan(flightKey, func() (any, error) {
		return g.refresh(flightCtx)
	})
	g.waiters.Add(1)
	defer g.waiters.Add(-1)

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// IsRefreshing informa si hay una renovación en curso.
func (g *Gateway) IsRefreshing() bool {
	return g.refreshing.Load()
}

// Waiters número de llamadores esperando una renovación.
func (g *Gateway) Waiters() int {
	return int(g.waiters.Load())
}

func (g *Gateway) refresh(ctx context.Context) (string, error) {
	g.refreshing.Store(true)
	defer g.refreshing.Store(false)

	g.log.Info().Msg("renovando token")
	tok, err := g.refresher.RefreshToken(ctx)
	if err == nil && tok == "" {
		err = domain.ErrInvalidResponse
	}
	if err != nil {
		g.log.Error().Err(err).Msg("renovación fallida, se limpia la sesión")
		g.store.Clear(ctx)
		return "", fmt.Errorf("%w: %w", domain.ErrSessionExpired, err)
	}
	if !g.store.UpdateToken(ctx, tok) {
		g.log.Warn().Msg("token renovado pero no se pudo persistir")
	}
	g.log.Info().Msg("token renovado")
	return tok, nil
}
