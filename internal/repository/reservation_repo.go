package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/roomescape-club/reservation-service/internal/models"
	"gorm.io/gorm"
)

// ErrTxConflict marks a transaction aborted by the database to resolve a
// serialization failure or deadlock. Safe to retry.
var ErrTxConflict = errors.New("transaction conflict")

type ReservationFilter struct {
	MemberID *uint
	ThemeID  *uint
	DateFrom *time.Time
	DateTo   *time.Time
}

type ReservationRepository interface {
	// WithTx runs fn against a transaction-scoped copy of the repository.
	// All engine mutations go through here so the slot checks and writes
	// commit or roll back as one unit.
	WithTx(ctx context.Context, fn func(tx ReservationRepository) error) error
	// LockSlot serializes concurrent operations on the same slot. Must be
	// called inside WithTx, before any existence/count check.
	LockSlot(ctx context.Context, slot models.Slot) error

	Save(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	ExistsBooked(ctx context.Context, slot models.Slot) (bool, error)
	ExistsActiveByMember(ctx context.Context, memberID uint, slot models.Slot) (bool, error)
	CountWaiting(ctx context.Context, slot models.Slot) (int64, error)
	CountWaitingAhead(ctx context.Context, reservation *models.Reservation) (int64, error)
	FirstWaiting(ctx context.Context, slot models.Slot) (*models.Reservation, error)
	FindActiveByMember(ctx context.Context, memberID uint) ([]models.Reservation, error)
	FindAllBooked(ctx context.Context) ([]models.Reservation, error)
	FindBookedByFilter(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
	ExistsByThemeID(ctx context.Context, themeID uint) (bool, error)
	ExistsByTimeID(ctx context.Context, timeID uint) (bool, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) WithTx(ctx context.Context, fn func(tx ReservationRepository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reservationRepository{db: tx})
	})
	if isTxConflict(err) {
		return ErrTxConflict
	}
	return err
}

// isTxConflict detects postgres serialization failures (40001) and deadlock
// aborts (40P01).
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// LockSlot takes a transaction-scoped advisory lock keyed by the slot triple.
// The lock is released automatically on commit or rollback.
func (r *reservationRepository) LockSlot(ctx context.Context, slot models.Slot) error {
	key := fmt.Sprintf("reservation:%d:%s:%d", slot.ThemeID, slot.Date.Format("2006-01-02"), slot.TimeID)
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error
}

func slotScope(slot models.Slot) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("theme_id = ? AND date = ? AND time_id = ?", slot.ThemeID, slot.Date, slot.TimeID)
	}
}

func (r *reservationRepository) Save(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) ExistsBooked(ctx context.Context, slot models.Slot) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Scopes(slotScope(slot)).
		Where("status = ?", models.StatusBooked).
		Count(&count).Error
	return count > 0, err
}

func (r *reservationRepository) ExistsActiveByMember(ctx context.Context, memberID uint, slot models.Slot) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Scopes(slotScope(slot)).
		Where("member_id = ? AND status IN ?", memberID, []models.ReservationStatus{models.StatusBooked, models.StatusWaiting}).
		Count(&count).Error
	return count > 0, err
}

func (r *reservationRepository) CountWaiting(ctx context.Context, slot models.Slot) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Scopes(slotScope(slot)).
		Where("status = ?", models.StatusWaiting).
		Count(&count).Error
	return count, err
}

// CountWaitingAhead returns the 0-based queue rank: waiters on the same slot
// created strictly earlier, with the persisted id as a stable tie-break.
func (r *reservationRepository) CountWaitingAhead(ctx context.Context, reservation *models.Reservation) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Scopes(slotScope(reservation.Slot)).
		Where("status = ?", models.StatusWaiting).
		Where("created_at < ? OR (created_at = ? AND id < ?)",
			reservation.CreatedAt, reservation.CreatedAt, reservation.ID).
		Count(&count).Error
	return count, err
}

// FirstWaiting returns the frontmost waiter for promotion.
func (r *reservationRepository) FirstWaiting(ctx context.Context, slot models.Slot) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Scopes(slotScope(slot)).
		Where("status = ?", models.StatusWaiting).
		Order("created_at ASC, id ASC").
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindActiveByMember(ctx context.Context, memberID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status IN ?", memberID, []models.ReservationStatus{models.StatusBooked, models.StatusWaiting}).
		Order("created_at DESC, id DESC").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) FindAllBooked(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusBooked).
		Order("id ASC").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) FindBookedByFilter(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).Where("status = ?", models.StatusBooked)
	if filter.MemberID != nil {
		q = q.Where("member_id = ?", *filter.MemberID)
	}
	if filter.ThemeID != nil {
		q = q.Where("theme_id = ?", *filter.ThemeID)
	}
	if filter.DateFrom != nil {
		q = q.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("date <= ?", *filter.DateTo)
	}
	var reservations []models.Reservation
	err := q.Order("id ASC").Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) ExistsByThemeID(ctx context.Context, themeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("theme_id = ?", themeID).
		Count(&count).Error
	return count > 0, err
}

func (r *reservationRepository) ExistsByTimeID(ctx context.Context, timeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("time_id = ?", timeID).
		Count(&count).Error
	return count > 0, err
}
