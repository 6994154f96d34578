package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jhoicas/lxhallazgos/internal/application/authflow"
	"github.com/jhoicas/lxhallazgos/internal/application/findings"
	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/application/token"
	"github.com/jhoicas/lxhallazgos/internal/application/users"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/api"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/storage"
	"github.com/jhoicas/lxhallazgos/pkg/config"
	"github.com/jhoicas/lxhallazgos/pkg/logger"
)

// app colaboradores del cliente, armados una vez por invocación.
type app struct {
	kv       storage.Store
	store    *session.Store
	machine  *authflow.Machine
	findings *findings.Service
	users    *users.Service
}

// newApp arma el cliente: almacenamiento de sesión, adaptadores HTTP, gateway de tokens y la
// máquina de login. Los logs van a logOut para no mezclarse con la salida del comando.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: logOut})

	kv, err := storage.Open(ctx, cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("abrir almacenamiento de sesión: %w", err)
	}
	store := session.NewStore(kv, log.Zerolog())

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), log.Zerolog())
	creds := api.NewCredentials(client, store)
	tokens := token.New(store, creds,
		token.WithMaxAge(cfg.Session.MaxAge()),
		token.WithLogger(log.Zerolog()),
	)
	transport := api.NewTransport(client, store, tokens, log.Zerolog())

	machine := authflow.New(authflow.Deps{
		Store:       store,
		Verifier:    tokens,
		Directory:   api.NewDirectory(client),
		Credentials: creds,
	},
		authflow.WithLogger(log.Zerolog()),
		authflow.WithCompanyRevalidation(cfg.Session.RevalidateCompany),
	)

	return &app{
		kv:       kv,
		store:    store,
		machine:  machine,
		findings: findings.NewService(store, api.NewFindings(transport), log.Zerolog()),
		users:    users.NewService(store, api.NewUsers(transport), log.Zerolog()),
	}, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}
