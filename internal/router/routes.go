package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-import/api/internal/auth"
	"github.com/octobees/lead-import/api/internal/config"
	"github.com/octobees/lead-import/api/internal/handler"
	middlewarepkg "github.com/octobees/lead-import/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	Imports *handler.ImportsHandler
	Agents  *handler.AgentsHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/imports", handlers.Imports.Upload, middlewarepkg.UploadRateLimiter("/imports", cfg.RateLimitUpload))
	secured.GET("/imports/:id", handlers.Imports.Get)
	secured.POST("/imports/:id/advance", handlers.Imports.Advance)
	secured.DELETE("/imports/:id", handlers.Imports.Discard)
	secured.GET("/imports/:id/export", handlers.Imports.Export)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/agents", handlers.Agents.List)
	admin.POST("/agents", handlers.Agents.Create)
}
