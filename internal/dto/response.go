package dto

import (
	"time"

	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/service"
)

const dateLayout = "2006-01-02"

type ReservationResponse struct {
	ID        uint                     `json:"id"`
	MemberID  uint                     `json:"member_id"`
	ThemeID   uint                     `json:"theme_id"`
	Date      string                   `json:"date"`
	TimeID    uint                     `json:"time_id"`
	Status    models.ReservationStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
}

// ReservationStatusResponse is ReservationResponse plus the queue rank for
// waiting reservations (0 = front of the queue, omitted when booked).
type ReservationStatusResponse struct {
	ReservationResponse
	Rank *int `json:"rank,omitempty"`
}

type MemberResponse struct {
	ID    uint              `json:"id"`
	Name  string            `json:"name"`
	Email string            `json:"email"`
	Role  models.MemberRole `json:"role"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ThemeResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type TimeResponse struct {
	ID      uint   `json:"id"`
	StartAt string `json:"start_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		MemberID:  r.MemberID,
		ThemeID:   r.Slot.ThemeID,
		Date:      r.Slot.Date.Format(dateLayout),
		TimeID:    r.Slot.TimeID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

func ToReservationStatusResponse(v service.ReservationStatusView) ReservationStatusResponse {
	return ReservationStatusResponse{
		ReservationResponse: ToReservationResponse(&v.Reservation),
		Rank:                v.Rank,
	}
}

func ToMemberResponse(m *models.Member) MemberResponse {
	return MemberResponse{ID: m.ID, Name: m.Name, Email: m.Email, Role: m.Role}
}

func ToThemeResponse(t *models.Theme) ThemeResponse {
	return ThemeResponse{ID: t.ID, Name: t.Name, Description: t.Description, ThumbnailURL: t.ThumbnailURL}
}

func ToTimeResponse(t *models.ReservationTime) TimeResponse {
	return TimeResponse{ID: t.ID, StartAt: t.StartAt}
}
