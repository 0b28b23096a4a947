package service

import (
	"context"

	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/repository"
)

// ReservationStatusView pairs an active reservation with its queue rank.
// Rank is nil for BOOKED reservations and 0-based for WAITING ones
// (0 = front of the queue).
type ReservationStatusView struct {
	Reservation models.Reservation
	Rank        *int
}

type LookupService interface {
	StatusesForMember(ctx context.Context, memberID uint) ([]ReservationStatusView, error)
	FindAllBooked(ctx context.Context) ([]models.Reservation, error)
	FindByFilter(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error)
}

type lookupService struct {
	reservations repository.ReservationRepository
}

func NewLookupService(reservations repository.ReservationRepository) LookupService {
	return &lookupService{reservations: reservations}
}

func (s *lookupService) StatusesForMember(ctx context.Context, memberID uint) ([]ReservationStatusView, error) {
	reservations, err := s.reservations.FindActiveByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	views := make([]ReservationStatusView, 0, len(reservations))
	for i := range reservations {
		view := ReservationStatusView{Reservation: reservations[i]}
		if reservations[i].IsWaiting() {
			ahead, err := s.reservations.CountWaitingAhead(ctx, &reservations[i])
			if err != nil {
				return nil, err
			}
			rank := int(ahead)
			view.Rank = &rank
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *lookupService) FindAllBooked(ctx context.Context) ([]models.Reservation, error) {
	return s.reservations.FindAllBooked(ctx)
}

func (s *lookupService) FindByFilter(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error) {
	return s.reservations.FindBookedByFilter(ctx, filter)
}
