package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/dto"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/service"
)

type CompanyHandler struct {
	companyService service.CompanyService
	eventService   service.EventService
}

func NewCompanyHandler(companyService service.CompanyService, eventService service.EventService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		eventService:   eventService,
	}
}

func (h *CompanyHandler) CreateCompany(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	companyID, err := h.companyService.CreateCompany(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id": companyID,
	})
}

func (h *CompanyHandler) GetCompany(c echo.Context) error {
	ctx := c.Request().Context()

	company, err := h.companyService.GetCompany(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	return c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) CreateEvent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	eventID, err := h.eventService.CreateEvent(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id": eventID,
	})
}

func (h *CompanyHandler) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()

	event, err := h.eventService.GetEvent(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	return c.JSON(http.StatusOK, event)
}
