// Package routes binds the HTTP handlers to their paths.
package routes

import (
	"net/http"

	"setores/cmd/internal/http/handler"
	"setores/cmd/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Setores *handler.DefaultSetorRoute
	Admin   *handler.DefaultAdminRoute
	Meta    *handler.DefaultMetaRoute
	Gate    middleware.AdminGate
	Metrics http.Handler
}

func Register(e *echo.Echo, h *Handlers) {
	requireAdmin := middleware.RequireAdmin

	// The unlock endpoint stays outside the admin group, see DefaultAdminRoute.Unlock.
	e.POST("/api/admin/unlock", h.Admin.Unlock)

	api := e.Group("/api", middleware.NewAdminContext(&middleware.AdminMiddlewareConfig{Gate: h.Gate}))

	// Setores
	api.GET("/setores", h.Setores.GetSetores)
	api.GET("/setores/export", h.Setores.ExportSetores, requireAdmin)
	api.POST("/setores/import", h.Setores.ImportSetores, requireAdmin)
	api.POST("/setores/import-csv", h.Setores.ImportCSV, requireAdmin)
	api.GET("/setores/:id", h.Setores.GetSetor)
	api.POST("/setores", h.Setores.CreateSetor, requireAdmin)
	api.PATCH("/setores/:id", h.Setores.UpdateSetor, requireAdmin)
	api.PATCH("/setores/:id/contatos", h.Setores.UpdateContacts, requireAdmin)
	api.POST("/setores/:id/ramais/access", h.Setores.RegisterAccess, requireAdmin)
	api.POST("/setores/:id/ramais/favorite", h.Setores.SetFavorite, requireAdmin)
	api.GET("/setores/:id/ramais/top", h.Setores.GetTopRamais)
	api.GET("/setores/:id/history", h.Setores.GetHistory, requireAdmin)
	api.GET("/setores/:id/whatsapp/qrcode", h.Setores.GetWhatsappQRCode, requireAdmin)
	api.GET("/blocos", h.Setores.GetBlocos)
	api.GET("/andares", h.Setores.GetAndares)
	api.GET("/statistics", h.Setores.GetStatistics)

	// Admin
	api.GET("/admin/status", h.Admin.GetStatus)
	api.POST("/admin/lock", h.Admin.Lock, requireAdmin)

	// Operational
	api.GET("/version", h.Meta.GetVersion)
	api.GET("/persist/status", h.Meta.GetPersistStatus)
	e.GET("/healthz", h.Meta.Healthz)
	e.GET("/readyz", h.Meta.Readyz)
	if h.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.Metrics))
	}
}
