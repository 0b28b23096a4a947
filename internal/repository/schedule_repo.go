package repository

import (
	"context"

	"github.com/roomescape-club/reservation-service/internal/models"
	"gorm.io/gorm"
)

type ThemeRepository interface {
	Create(ctx context.Context, theme *models.Theme) error
	FindByID(ctx context.Context, id uint) (*models.Theme, error)
	FindAll(ctx context.Context) ([]models.Theme, error)
	Delete(ctx context.Context, id uint) error
}

type themeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) Create(ctx context.Context, theme *models.Theme) error {
	return r.db.WithContext(ctx).Create(theme).Error
}

func (r *themeRepository) FindByID(ctx context.Context, id uint) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.WithContext(ctx).First(&theme, id).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *themeRepository) FindAll(ctx context.Context) ([]models.Theme, error) {
	var themes []models.Theme
	err := r.db.WithContext(ctx).Order("id ASC").Find(&themes).Error
	return themes, err
}

func (r *themeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Theme{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type TimeRepository interface {
	Create(ctx context.Context, t *models.ReservationTime) error
	FindByID(ctx context.Context, id uint) (*models.ReservationTime, error)
	FindAll(ctx context.Context) ([]models.ReservationTime, error)
	Delete(ctx context.Context, id uint) error
}

type timeRepository struct {
	db *gorm.DB
}

func NewTimeRepository(db *gorm.DB) TimeRepository {
	return &timeRepository{db: db}
}

func (r *timeRepository) Create(ctx context.Context, t *models.ReservationTime) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *timeRepository) FindByID(ctx context.Context, id uint) (*models.ReservationTime, error) {
	var t models.ReservationTime
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *timeRepository) FindAll(ctx context.Context) ([]models.ReservationTime, error) {
	var times []models.ReservationTime
	err := r.db.WithContext(ctx).Order("start_at ASC").Find(&times).Error
	return times, err
}

func (r *timeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ReservationTime{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
