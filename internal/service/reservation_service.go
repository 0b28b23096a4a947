package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/repository"
	"gorm.io/gorm"
)

// WaitingCapacity caps the number of WAITING reservations per slot.
const WaitingCapacity = 5

// Actor is the authenticated caller as supplied by the auth middleware.
// Admins may cancel reservations they do not own.
type Actor struct {
	MemberID uint
	IsAdmin  bool
}

type ReservationService interface {
	CreateBooking(ctx context.Context, memberID uint, date time.Time, timeID, themeID uint) (*models.Reservation, error)
	EnqueueWaiting(ctx context.Context, memberID uint, date time.Time, timeID, themeID uint) (*models.Reservation, error)
	Cancel(ctx context.Context, actor Actor, reservationID uint) error
}

// EventPublisher is satisfied by the rabbitmq publisher. Publishing is
// best-effort: the reservation state in postgres is authoritative.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type reservationService struct {
	reservations repository.ReservationRepository
	themes       repository.ThemeRepository
	times        repository.TimeRepository
	publisher    EventPublisher
	now          func() time.Time
}

func NewReservationService(
	reservations repository.ReservationRepository,
	themes repository.ThemeRepository,
	times repository.TimeRepository,
	publisher EventPublisher,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		themes:       themes,
		times:        times,
		publisher:    publisher,
		now:          time.Now,
	}
}

// resolveSlot resolves the time and theme references and returns the slot
// together with its scheduled start instant.
func (s *reservationService) resolveSlot(ctx context.Context, date time.Time, timeID, themeID uint) (models.Slot, time.Time, error) {
	reservationTime, err := s.times.FindByID(ctx, timeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Slot{}, time.Time{}, ErrTimeNotFound
		}
		return models.Slot{}, time.Time{}, err
	}
	if _, err := s.themes.FindByID(ctx, themeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Slot{}, time.Time{}, ErrThemeNotFound
		}
		return models.Slot{}, time.Time{}, err
	}
	slot := models.NewSlot(themeID, date, timeID)
	return slot, reservationTime.On(slot.Date), nil
}

func (s *reservationService) CreateBooking(ctx context.Context, memberID uint, date time.Time, timeID, themeID uint) (*models.Reservation, error) {
	slot, startAt, err := s.resolveSlot(ctx, date, timeID, themeID)
	if err != nil {
		return nil, err
	}

	reservation, err := models.NewReservation(memberID, slot, startAt, s.now(), models.StatusBooked)
	if err != nil {
		return nil, err
	}

	err = s.reservations.WithTx(ctx, func(tx repository.ReservationRepository) error {
		if err := tx.LockSlot(ctx, slot); err != nil {
			return err
		}
		booked, err := tx.ExistsBooked(ctx, slot)
		if err != nil {
			return err
		}
		if booked {
			// Direct booking of an occupied slot is invalid; queue
			// semantics go through EnqueueWaiting.
			return ErrDuplicateReservation
		}
		active, err := tx.ExistsActiveByMember(ctx, memberID, slot)
		if err != nil {
			return err
		}
		if active {
			// A member already waiting on the slot cannot also hold
			// the booking.
			return ErrDuplicateReservation
		}
		return tx.Save(ctx, reservation)
	})
	if err != nil {
		return nil, mapTxErr(err)
	}

	s.publish("reservation.booked", reservation)
	return reservation, nil
}

func (s *reservationService) EnqueueWaiting(ctx context.Context, memberID uint, date time.Time, timeID, themeID uint) (*models.Reservation, error) {
	slot, startAt, err := s.resolveSlot(ctx, date, timeID, themeID)
	if err != nil {
		return nil, err
	}

	reservation, err := models.NewReservation(memberID, slot, startAt, s.now(), models.StatusWaiting)
	if err != nil {
		return nil, err
	}

	err = s.reservations.WithTx(ctx, func(tx repository.ReservationRepository) error {
		if err := tx.LockSlot(ctx, slot); err != nil {
			return err
		}
		active, err := tx.ExistsActiveByMember(ctx, memberID, slot)
		if err != nil {
			return err
		}
		if active {
			return ErrDuplicateReservation
		}
		waiting, err := tx.CountWaiting(ctx, slot)
		if err != nil {
			return err
		}
		if waiting >= WaitingCapacity {
			return ErrWaitingListExceeded
		}
		return tx.Save(ctx, reservation)
	})
	if err != nil {
		return nil, mapTxErr(err)
	}

	s.publish("reservation.waiting", reservation)
	return reservation, nil
}

// Cancel moves the reservation to its terminal status. Cancelling a BOOKED
// reservation promotes the frontmost waiter in the same transaction, so the
// slot is never left unbooked while waiters remain.
func (s *reservationService) Cancel(ctx context.Context, actor Actor, reservationID uint) error {
	var cancelled, promoted *models.Reservation

	err := s.reservations.WithTx(ctx, func(tx repository.ReservationRepository) error {
		reservation, err := tx.FindByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if !actor.IsAdmin && !reservation.OwnedBy(actor.MemberID) {
			return ErrNotAuthorized
		}

		if err := tx.LockSlot(ctx, reservation.Slot); err != nil {
			return err
		}
		// Re-read under the slot lock; a concurrent cancel may have
		// already moved the status.
		reservation, err = tx.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}

		switch {
		case reservation.IsBooked():
			if err := reservation.CancelBooking(); err != nil {
				return err
			}
			if err := tx.Save(ctx, reservation); err != nil {
				return err
			}
			next, err := tx.FirstWaiting(ctx, reservation.Slot)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if next != nil {
				if err := next.Book(); err != nil {
					return err
				}
				if err := tx.Save(ctx, next); err != nil {
					return err
				}
				promoted = next
			}
		case reservation.IsWaiting():
			if err := reservation.CancelWaiting(); err != nil {
				return err
			}
			if err := tx.Save(ctx, reservation); err != nil {
				return err
			}
		default:
			return ErrAlreadyCancelled
		}

		cancelled = reservation
		return nil
	})
	if err != nil {
		return mapTxErr(err)
	}

	s.publish("reservation.cancelled", cancelled)
	if promoted != nil {
		s.publish("reservation.promoted", promoted)
	}
	return nil
}

func (s *reservationService) publish(routingKey string, reservation *models.Reservation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, reservation); err != nil {
		log.Printf("[ReservationService] publish %s: %v", routingKey, err)
	}
}

func mapTxErr(err error) error {
	if errors.Is(err, repository.ErrTxConflict) {
		return ErrConcurrencyConflict
	}
	return err
}
