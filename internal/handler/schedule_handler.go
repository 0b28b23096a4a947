package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/roomescape-club/reservation-service/internal/dto"
	"github.com/roomescape-club/reservation-service/internal/middleware"
	"github.com/roomescape-club/reservation-service/internal/service"
)

type ScheduleHandler struct {
	svc service.ScheduleService
}

func NewScheduleHandler(svc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// RegisterRoutes mounts reads for every authenticated member and writes for
// admins only.
func (h *ScheduleHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/themes", h.ListThemes)
	g.GET("/times", h.ListTimes)

	admin := g.Group("", middleware.RequireAdmin())
	admin.POST("/themes", h.CreateTheme)
	admin.DELETE("/themes/:id", h.DeleteTheme)
	admin.POST("/times", h.CreateTime)
	admin.DELETE("/times/:id", h.DeleteTime)
}

func (h *ScheduleHandler) ListThemes(c echo.Context) error {
	themes, err := h.svc.ListThemes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ThemeResponse, len(themes))
	for i := range themes {
		resp[i] = dto.ToThemeResponse(&themes[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ScheduleHandler) CreateTheme(c echo.Context) error {
	var req dto.CreateThemeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	theme, err := h.svc.CreateTheme(c.Request().Context(), req.Name, req.Description, req.ThumbnailURL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, dto.ToThemeResponse(theme))
}

func (h *ScheduleHandler) DeleteTheme(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid theme id")
	}

	if err := h.svc.DeleteTheme(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrThemeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrThemeInUse):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ScheduleHandler) ListTimes(c echo.Context) error {
	times, err := h.svc.ListTimes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.TimeResponse, len(times))
	for i := range times {
		resp[i] = dto.ToTimeResponse(&times[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ScheduleHandler) CreateTime(c echo.Context) error {
	var req dto.CreateTimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reservationTime, err := h.svc.CreateTime(c.Request().Context(), req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, dto.ToTimeResponse(reservationTime))
}

func (h *ScheduleHandler) DeleteTime(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid time id")
	}

	if err := h.svc.DeleteTime(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrTimeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTimeInUse):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}
