package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/codetemplate/internal/model"
)

// Gateway copies the identity headers set by the upstream gateway into the
// echo context as model.GatewayData. The values are trusted as-is; requests
// without them fail validation on routes that require an account.
func Gateway() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			c.Set(model.GatewayDataKey, model.GatewayData{
				AccountID:    strings.TrimSpace(h.Get(model.HeaderAccountID)),
				WhitelabelID: strings.TrimSpace(h.Get(model.HeaderWhitelabelID)),
				UserID:       strings.TrimSpace(h.Get(model.HeaderUserID)),
			})
			return next(c)
		}
	}
}
