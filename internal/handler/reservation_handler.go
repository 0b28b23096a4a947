package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/roomescape-club/reservation-service/internal/dto"
	"github.com/roomescape-club/reservation-service/internal/middleware"
	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/service"
)

const dateLayout = "2006-01-02"

type ReservationHandler struct {
	svc    service.ReservationService
	lookup service.LookupService
}

func NewReservationHandler(svc service.ReservationService, lookup service.LookupService) *ReservationHandler {
	return &ReservationHandler{svc: svc, lookup: lookup}
}

func (h *ReservationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/reservations", h.ListBooked)
	g.GET("/reservations/me", h.MyReservations)
	g.POST("/reservations", h.CreateBooking)
	g.POST("/reservations/waiting", h.EnqueueWaiting)
	g.DELETE("/reservations/:id", h.Cancel)
}

func parseReservationRequest(c echo.Context) (time.Time, *dto.ReservationRequest, error) {
	var req dto.ReservationRequest
	if err := c.Bind(&req); err != nil {
		return time.Time{}, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TimeID == 0 || req.ThemeID == 0 {
		return time.Time{}, nil, echo.NewHTTPError(http.StatusBadRequest, "time_id and theme_id are required")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return time.Time{}, nil, echo.NewHTTPError(http.StatusBadRequest, "date must be in YYYY-MM-DD format")
	}
	return date, &req, nil
}

func (h *ReservationHandler) CreateBooking(c echo.Context) error {
	date, req, err := parseReservationRequest(c)
	if err != nil {
		return err
	}

	memberID := middleware.MemberIDFrom(c)
	reservation, err := h.svc.CreateBooking(c.Request().Context(), memberID, date, req.TimeID, req.ThemeID)
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

func (h *ReservationHandler) EnqueueWaiting(c echo.Context) error {
	date, req, err := parseReservationRequest(c)
	if err != nil {
		return err
	}

	memberID := middleware.MemberIDFrom(c)
	reservation, err := h.svc.EnqueueWaiting(c.Request().Context(), memberID, date, req.TimeID, req.ThemeID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPastReservation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTimeNotFound), errors.Is(err, service.ErrThemeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDuplicateReservation),
			errors.Is(err, service.ErrWaitingListExceeded),
			errors.Is(err, service.ErrConcurrencyConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
	}

	actor := middleware.ActorFrom(c)
	if err := h.svc.Cancel(c.Request().Context(), actor, uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotAuthorized):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAlreadyCancelled), errors.Is(err, service.ErrConcurrencyConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) MyReservations(c echo.Context) error {
	memberID := middleware.MemberIDFrom(c)
	views, err := h.lookup.StatusesForMember(c.Request().Context(), memberID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ReservationStatusResponse, len(views))
	for i, v := range views {
		resp[i] = dto.ToReservationStatusResponse(v)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) ListBooked(c echo.Context) error {
	reservations, err := h.lookup.FindAllBooked(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		resp[i] = dto.ToReservationResponse(&reservations[i])
	}
	return c.JSON(http.StatusOK, resp)
}
