package middleware

import (
	"net/http"

	"setores/cmd/internal/utils"
	"setores/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AdminGate interface {
	Allowed(credential string) bool
}

type AdminMiddlewareConfig struct {
	Gate AdminGate
}

// NewAdminContext marks every request with whether it passed the gate. It
// never rejects; RequireAdmin does that on the routes that need it.
func NewAdminContext(cfg *AdminMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(utils.AdminContextKey, cfg.Gate.Allowed(utils.MasterCredential(c)))
			return next(c)
		}
	}
}

// RequireAdmin answers 403 unless NewAdminContext already let the request in.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !utils.IsAdmin(c) {
			return c.JSON(http.StatusForbidden, apierror.MasterPasswordError)
		}
		return next(c)
	}
}
