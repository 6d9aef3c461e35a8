package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/codetemplate/internal/handler"
)

// registerSystemRoutes registers the endpoints outside the business API:
// health, docs UI and the static assets the docs load.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", handler.StaticDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
