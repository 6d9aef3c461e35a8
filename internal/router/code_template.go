package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/codetemplate/internal/handler"
)

// registerCodeTemplateRoutes mounts /codes. Clone and delete take the
// account from the authenticated session, every other route trusts the
// gateway headers.
func registerCodeTemplateRoutes(r *echo.Group, h *handler.CodeTemplateHandler, requireAuth echo.MiddlewareFunc) {
	codes := r.Group("/codes")

	codes.GET("", handler.Handle(h.Handler, h.GetCodeTemplateList, http.StatusOK))
	codes.GET("/all", handler.Handle(h.Handler, h.GetCodeTemplateList, http.StatusOK))
	codes.GET("/:code_id", handler.Handle(h.Handler, h.GetCodeTemplate, http.StatusOK))
	codes.POST("", handler.Handle(h.Handler, h.CreateCodeTemplate, http.StatusOK))
	codes.PUT("/:code_id", handler.Handle(h.Handler, h.UpdateCodeTemplate, http.StatusOK))

	codes.POST("/:code_id/clone", handler.Handle(h.Handler, h.CloneCodeTemplate, http.StatusOK), requireAuth)
	codes.DELETE("/:code_id", handler.Handle(h.Handler, h.DeleteCodeTemplate, http.StatusOK), requireAuth)
}
