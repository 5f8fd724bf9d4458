package handler

import (
	"net/http"

	"setores/cmd/internal/contract"
	"setores/cmd/internal/utils"
	"setores/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AdminService interface {
	Unlock(source, credential string) (*contract.UnlockResponse, apierror.ErrorResponse)
	Status() *contract.AdminStatusResponse
	Lock()
}

type DefaultAdminRoute struct {
	AdminService AdminService
}

func NewAdminDefault(adminService AdminService) *DefaultAdminRoute {
	return &DefaultAdminRoute{AdminService: adminService}
}

// Unlock must not sit behind the admin middleware: the limiter has to see
// the attempt before the gate does.
func (a *DefaultAdminRoute) Unlock(c echo.Context) error {
	resp, apierr := a.AdminService.Unlock(c.RealIP(), utils.MasterCredential(c))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *DefaultAdminRoute) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, a.AdminService.Status())
}

func (a *DefaultAdminRoute) Lock(c echo.Context) error {
	a.AdminService.Lock()
	return c.NoContent(http.StatusNoContent)
}
