package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/application/auth"
	"github.com/jhoicas/lxhallazgos/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC *usecase.CompanyUseCase
	FindingUC *usecase.FindingUseCase
	UserUC    *usecase.UserUseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
	Log       zerolog.Logger
}

// RequestLogger registra método, ruta, estado y duración de cada petición con su X-Request-ID.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duracion", time.Since(start)).
			Msg("petición atendida")
		return err
	}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// requestid reutiliza el X-Request-ID que manda el cliente.
	app.Use(requestid.New(), RequestLogger(deps.Log))

	api := app.Group("/api")

	// Directorio (público)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Get("/empresas/public", companyHandler.ListPublic)

	// Auth: login, logout y refresh son públicos (refresh valida el token por su cuenta).
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	findings := protected.Group("/hallazgos")
	findingHandler := NewFindingHandler(deps.FindingUC)
	findings.Put("/close-all", findingHandler.CloseAll)
	findings.Get("/:id", findingHandler.Get)
	findings.Post("/", findingHandler.Create)
	findings.Put("/:id", findingHandler.Update)
	findings.Put("/:id/close", findingHandler.Close)
	findings.Put("/:id/reopen", findingHandler.Reopen)
	findings.Delete("/:id", findingHandler.Delete)

	users := protected.Group("/usuarios")
	userHandler := NewUserHandler(deps.UserUC)
	users.Put("/profile", userHandler.UpdateProfile)
	users.Get("/:id", RequireRole("admin", "super_admin"), userHandler.Get)
	users.Post("/", RequireRole("admin", "super_admin"), userHandler.Create)
	users.Put("/:id", RequireRole("admin", "super_admin"), userHandler.Update)
	users.Put("/:id/estado", RequireRole("admin", "super_admin"), userHandler.SetActive)
	users.Delete("/:id", RequireRole("admin", "super_admin"), userHandler.Delete)
}
