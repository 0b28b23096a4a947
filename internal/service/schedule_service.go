package service

import (
	"context"
	"errors"

	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/repository"
	"gorm.io/gorm"
)

// ScheduleService manages the bookable themes and times. Deleting either is
// refused while any reservation references it, so history stays resolvable.
type ScheduleService interface {
	CreateTheme(ctx context.Context, name, description, thumbnailURL string) (*models.Theme, error)
	ListThemes(ctx context.Context) ([]models.Theme, error)
	DeleteTheme(ctx context.Context, id uint) error

	CreateTime(ctx context.Context, startAt string) (*models.ReservationTime, error)
	ListTimes(ctx context.Context) ([]models.ReservationTime, error)
	DeleteTime(ctx context.Context, id uint) error
}

type scheduleService struct {
	themes       repository.ThemeRepository
	times        repository.TimeRepository
	reservations repository.ReservationRepository
}

func NewScheduleService(
	themes repository.ThemeRepository,
	times repository.TimeRepository,
	reservations repository.ReservationRepository,
) ScheduleService {
	return &scheduleService{themes: themes, times: times, reservations: reservations}
}

func (s *scheduleService) CreateTheme(ctx context.Context, name, description, thumbnailURL string) (*models.Theme, error) {
	theme, err := models.NewTheme(name, description, thumbnailURL)
	if err != nil {
		return nil, err
	}
	if err := s.themes.Create(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

func (s *scheduleService) ListThemes(ctx context.Context) ([]models.Theme, error) {
	return s.themes.FindAll(ctx)
}

func (s *scheduleService) DeleteTheme(ctx context.Context, id uint) error {
	inUse, err := s.reservations.ExistsByThemeID(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrThemeInUse
	}
	if err := s.themes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThemeNotFound
		}
		return err
	}
	return nil
}

func (s *scheduleService) CreateTime(ctx context.Context, startAt string) (*models.ReservationTime, error) {
	reservationTime, err := models.NewReservationTime(startAt)
	if err != nil {
		return nil, err
	}
	if err := s.times.Create(ctx, reservationTime); err != nil {
		return nil, err
	}
	return reservationTime, nil
}

func (s *scheduleService) ListTimes(ctx context.Context) ([]models.ReservationTime, error) {
	return s.times.FindAll(ctx)
}

func (s *scheduleService) DeleteTime(ctx context.Context, id uint) error {
	inUse, err := s.reservations.ExistsByTimeID(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrTimeInUse
	}
	if err := s.times.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeNotFound
		}
		return err
	}
	return nil
}
