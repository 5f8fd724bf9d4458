package handler

import (
	"io"
	"net/http"

	"setores/cmd/internal/contract"
	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/service"
	"setores/cmd/internal/utils"
	"setores/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type SetorService interface {
	ListSetores(q *contract.ListSetoresQuery, admin bool) (any, apierror.ErrorResponse)
	GetSetor(idOrSlug string, admin bool) (*contract.SetorResponse, apierror.ErrorResponse)
	CreateSetor(req *contract.CreateSetorRequest) (*contract.SetorResponse, apierror.ErrorResponse)
	UpdateSetor(idOrSlug string, req *contract.UpdateSetorRequest) (*contract.SetorResponse, apierror.ErrorResponse)
	UpdateContacts(idOrSlug string, req *contract.UpdateContactsRequest) (*contract.SetorResponse, apierror.ErrorResponse)
	RegisterAccess(idOrSlug string, req *contract.RamalAccessRequest) (*contract.RamalAccessResponse, apierror.ErrorResponse)
	SetFavorite(idOrSlug string, req *contract.RamalFavoriteRequest) (*contract.RamalFavoriteResponse, apierror.ErrorResponse)
	TopRamais(idOrSlug, limit string) ([]*contract.TopRamalResponse, apierror.ErrorResponse)
	ImportJSON(body []byte, mode string, persist bool) (*contract.ImportResponse, apierror.ErrorResponse)
	ImportCSV(body []byte, mode string, persist bool) (*contract.ImportResponse, apierror.ErrorResponse)
	Export(format string) (*service.ExportFile, apierror.ErrorResponse)
	History(idOrSlug, limit string) ([]*contract.ChangeLogResponse, apierror.ErrorResponse)
	WhatsappQRCode(idOrSlug, size string) ([]byte, apierror.ErrorResponse)
	Statistics() entity.Statistics
	Blocos() []string
	Andares() []string
}

type DefaultSetorRoute struct {
	SetorService SetorService
}

func NewSetorDefault(setorService SetorService) *DefaultSetorRoute {
	return &DefaultSetorRoute{SetorService: setorService}
}

func (s *DefaultSetorRoute) GetSetores(c echo.Context) error {
	var q contract.ListSetoresQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := s.SetorService.ListSetores(&q, utils.IsAdmin(c))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultSetorRoute) GetSetor(c echo.Context) error {
	setor, apierr := s.SetorService.GetSetor(c.Param("id"), utils.IsAdmin(c))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, setor)
}

func (s *DefaultSetorRoute) CreateSetor(c echo.Context) error {
	var req contract.CreateSetorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	setor, apierr := s.SetorService.CreateSetor(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, setor)
}

func (s *DefaultSetorRoute) UpdateSetor(c echo.Context) error {
	var req contract.UpdateSetorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	setor, apierr := s.SetorService.UpdateSetor(c.Param("id"), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, setor)
}

func (s *DefaultSetorRoute) UpdateContacts(c echo.Context) error {
	var req contract.UpdateContactsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	setor, apierr := s.SetorService.UpdateContacts(c.Param("id"), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, setor)
}

func (s *DefaultSetorRoute) RegisterAccess(c echo.Context) error {
	var req contract.RamalAccessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MissingRamalError)
	}

	resp, apierr := s.SetorService.RegisterAccess(c.Param("id"), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultSetorRoute) SetFavorite(c echo.Context) error {
	var req contract.RamalFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MissingFavoriteFieldsError)
	}

	resp, apierr := s.SetorService.SetFavorite(c.Param("id"), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultSetorRoute) GetTopRamais(c echo.Context) error {
	top, apierr := s.SetorService.TopRamais(c.Param("id"), c.QueryParam("limit"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, top)
}

func (s *DefaultSetorRoute) ImportSetores(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Warnf("failed to read import body: %v", err)
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := s.SetorService.ImportJSON(body, c.QueryParam("mode"), utils.IsTruthy(c.QueryParam("persist")))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultSetorRoute) ImportCSV(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Warnf("failed to read csv import body: %v", err)
		return c.JSON(http.StatusBadRequest, apierror.MissingCSVBodyError)
	}

	resp, apierr := s.SetorService.ImportCSV(body, c.QueryParam("mode"), utils.IsTruthy(c.QueryParam("persist")))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultSetorRoute) ExportSetores(c echo.Context) error {
	file, apierr := s.SetorService.Export(c.QueryParam("format"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+file.Filename+`"`)
	return c.Blob(http.StatusOK, file.ContentType, file.Body)
}

func (s *DefaultSetorRoute) GetHistory(c echo.Context) error {
	entries, apierr := s.SetorService.History(c.Param("id"), c.QueryParam("limit"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *DefaultSetorRoute) GetWhatsappQRCode(c echo.Context) error {
	png, apierr := s.SetorService.WhatsappQRCode(c.Param("id"), c.QueryParam("size"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *DefaultSetorRoute) GetStatistics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.SetorService.Statistics())
}

func (s *DefaultSetorRoute) GetBlocos(c echo.Context) error {
	return c.JSON(http.StatusOK, s.SetorService.Blocos())
}

func (s *DefaultSetorRoute) GetAndares(c echo.Context) error {
	return c.JSON(http.StatusOK, s.SetorService.Andares())
}
