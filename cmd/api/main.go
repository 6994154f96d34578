package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/lxhallazgos/internal/application/auth"
	"github.com/jhoicas/lxhallazgos/internal/application/usecase"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/memdb"
	"github.com/jhoicas/lxhallazgos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/lxhallazgos/internal/interfaces/http"
	"github.com/jhoicas/lxhallazgos/pkg/config"
	"github.com/jhoicas/lxhallazgos/pkg/logger"
)

// devJWTSecret solo se acepta con APP_ENV=development.
const devJWTSecret = "lx-hallazgos-dev-secret"

type repos struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
	findings  repository.FindingRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando backend de desarrollo")

	if cfg.JWT.Secret == "" {
		if cfg.App.Env != "development" {
			log.Fatal().Msg("JWT_SECRET es requerido fuera de development")
		}
		log.Warn().Msg("JWT_SECRET vacío, se usa el secreto de desarrollo")
		cfg.JWT.Secret = devJWTSecret
	}

	seedUsers, err := memdb.SeedUsers(bcrypt.MinCost)
	if err != nil {
		log.Fatal().Err(err).Msg("preparar datos semilla")
	}

	ctx := context.Background()
	var r repos
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		pgLog := log.Component("postgres")
		if err := postgres.EnsureSchema(ctx, pool, pgLog); err != nil {
			log.Fatal().Err(err).Msg("esquema PostgreSQL")
		}
		err = postgres.Seed(ctx, postgres.NewTxRunner(pool),
			memdb.SeedCompanies(), seedUsers, memdb.SeedFindings(), pgLog)
		if err != nil {
			log.Fatal().Err(err).Msg("datos semilla PostgreSQL")
		}
		r = repos{
			companies: postgres.NewCompanyRepository(pool),
			users:     postgres.NewUserRepository(pool),
			findings:  postgres.NewFindingRepository(pool),
		}
	} else {
		log.Info().Msg("sin base de datos configurada, directorio en memoria")
		r = repos{
			companies: memdb.NewCompanyRepository(memdb.SeedCompanies()),
			users:     memdb.NewUserRepository(seedUsers),
			findings:  memdb.NewFindingRepository(memdb.SeedFindings()),
		}
	}

	companyUC := usecase.NewCompanyUseCase(r.companies)
	findingUC := usecase.NewFindingUseCase(r.findings, r.users, log.Component("hallazgos"))
	userUC := usecase.NewUserUseCase(r.users, r.companies, bcrypt.DefaultCost, log.Component("usuarios"))
	authUC := auth.NewAuthUseCase(r.users, r.companies, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs (solo si DOCS_PATH apunta al swagger.json)
	if cfg.HTTP.DocsPath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsPath,
			Path:     "docs",
			Title:    "LxHallazgos API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC: companyUC,
		FindingUC: findingUC,
		UserUC:    userUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
