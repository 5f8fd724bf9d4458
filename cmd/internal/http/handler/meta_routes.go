package handler

import (
	"net/http"

	"setores/cmd/internal/contract"

	"github.com/labstack/echo/v4"
)

type MetaService interface {
	Version() *contract.VersionResponse
	Ready() *contract.ReadyResponse
	PersistStatus() *contract.PersistStatusResponse
}

type DefaultMetaRoute struct {
	MetaService MetaService
}

func NewMetaDefault(metaService MetaService) *DefaultMetaRoute {
	return &DefaultMetaRoute{MetaService: metaService}
}

func (m *DefaultMetaRoute) GetVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, m.MetaService.Version())
}

func (m *DefaultMetaRoute) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, &contract.HealthResponse{OK: true})
}

func (m *DefaultMetaRoute) Readyz(c echo.Context) error {
	ready := m.MetaService.Ready()
	if !ready.Ready {
		return c.JSON(http.StatusServiceUnavailable, ready)
	}
	return c.JSON(http.StatusOK, ready)
}

func (m *DefaultMetaRoute) GetPersistStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, m.MetaService.PersistStatus())
}
