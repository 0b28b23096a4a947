package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/roomescape-club/reservation-service/internal/dto"
	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/repository"
	"github.com/roomescape-club/reservation-service/internal/service"
	"gorm.io/gorm"
)

// AdminHandler exposes the reservation report and booking on behalf of a
// member. Routes are mounted behind the RequireAdmin middleware.
type AdminHandler struct {
	svc     service.ReservationService
	lookup  service.LookupService
	members repository.MemberRepository
}

func NewAdminHandler(svc service.ReservationService, lookup service.LookupService, members repository.MemberRepository) *AdminHandler {
	return &AdminHandler{svc: svc, lookup: lookup, members: members}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/reservations", h.CreateBooking)
	g.GET("/reservations", h.FindByFilter)
}

func (h *AdminHandler) CreateBooking(c echo.Context) error {
	var req dto.AdminReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.MemberID == 0 || req.TimeID == 0 || req.ThemeID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "member_id, time_id and theme_id are required")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be in YYYY-MM-DD format")
	}

	if _, err := h.members.FindByID(c.Request().Context(), req.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, service.ErrMemberNotFound.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	reservation, err := h.svc.CreateBooking(c.Request().Context(), req.MemberID, date, req.TimeID, req.ThemeID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPastReservation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTimeNotFound), errors.Is(err, service.ErrThemeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDuplicateReservation), errors.Is(err, service.ErrConcurrencyConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

func (h *AdminHandler) FindByFilter(c echo.Context) error {
	var filter repository.ReservationFilter

	if v := c.QueryParam("member_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid member_id")
		}
		memberID := uint(id)
		filter.MemberID = &memberID
	}
	if v := c.QueryParam("theme_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid theme_id")
		}
		themeID := uint(id)
		filter.ThemeID = &themeID
	}
	if v := c.QueryParam("date_from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
		}
		filter.DateFrom = &from
	}
	if v := c.QueryParam("date_to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
		}
		filter.DateTo = &to
	}

	reservations, err := h.lookup.FindByFilter(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		resp[i] = dto.ToReservationResponse(&reservations[i])
	}
	return c.JSON(http.StatusOK, resp)
}
