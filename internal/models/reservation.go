package models

import (
	"errors"
	"fmt"
	"time"
)

type ReservationStatus string

const (
	StatusBooked           ReservationStatus = "BOOKED"
	StatusWaiting          ReservationStatus = "WAITING"
	StatusBookingCancelled ReservationStatus = "BOOKING_CANCELLED"
	StatusWaitingCancelled ReservationStatus = "WAITING_CANCELLED"
)

// IsActive reports whether the status still occupies the slot or a queue
// position. Cancelled statuses are terminal.
func (s ReservationStatus) IsActive() bool {
	return s == StatusBooked || s == StatusWaiting
}

func (s ReservationStatus) IsCancelled() bool {
	return s == StatusBookingCancelled || s == StatusWaitingCancelled
}

var (
	ErrPastReservation   = errors.New("cannot reserve a slot that has already started")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

// Slot identifies a bookable (theme, date, time) combination. It has no
// lifecycle of its own and is embedded into the reservation row.
type Slot struct {
	ThemeID uint      `gorm:"not null;index:idx_reservation_slot,priority:1" json:"theme_id"`
	Date    time.Time `gorm:"type:date;not null;index:idx_reservation_slot,priority:2" json:"date"`
	TimeID  uint      `gorm:"not null;index:idx_reservation_slot,priority:3" json:"time_id"`
}

// NewSlot normalizes the date to UTC midnight so slots compare equal
// regardless of the wall clock on the incoming value.
func NewSlot(themeID uint, date time.Time, timeID uint) Slot {
	y, m, d := date.Date()
	return Slot{
		ThemeID: themeID,
		Date:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		TimeID:  timeID,
	}
}

func (s Slot) Equal(other Slot) bool {
	return s.ThemeID == other.ThemeID && s.TimeID == other.TimeID && s.Date.Equal(other.Date)
}

type Reservation struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	MemberID  uint              `gorm:"not null;index" json:"member_id"`
	Slot      Slot              `gorm:"embedded" json:"slot"`
	Status    ReservationStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

// NewReservation builds an unsaved reservation. startAt is the slot's
// scheduled start instant (date + time-of-day); a reservation created after
// that instant is rejected.
func NewReservation(memberID uint, slot Slot, startAt, createdAt time.Time, status ReservationStatus) (*Reservation, error) {
	if memberID == 0 {
		return nil, errors.New("reservation requires a member")
	}
	if slot.ThemeID == 0 || slot.TimeID == 0 {
		return nil, errors.New("reservation requires a resolved theme and time")
	}
	if !status.IsActive() {
		return nil, fmt.Errorf("reservation cannot be created as %s", status)
	}
	if createdAt.After(startAt) {
		return nil, ErrPastReservation
	}
	return &Reservation{
		MemberID:  memberID,
		Slot:      slot,
		Status:    status,
		CreatedAt: createdAt,
	}, nil
}

// Book confirms the reservation. The engine calls this when a slot is taken
// directly or when the frontmost waiter is promoted after a cancellation.
func (r *Reservation) Book() error {
	if !r.Status.IsActive() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, StatusBooked)
	}
	r.Status = StatusBooked
	return nil
}

// CancelBooking releases a confirmed booking. Terminal.
func (r *Reservation) CancelBooking() error {
	if r.Status != StatusBooked {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, StatusBookingCancelled)
	}
	r.Status = StatusBookingCancelled
	return nil
}

// CancelWaiting removes the reservation from the waiting queue. Terminal.
func (r *Reservation) CancelWaiting() error {
	if r.Status != StatusWaiting {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, StatusWaitingCancelled)
	}
	r.Status = StatusWaitingCancelled
	return nil
}

func (r *Reservation) IsBooked() bool {
	return r.Status == StatusBooked
}

func (r *Reservation) IsWaiting() bool {
	return r.Status == StatusWaiting
}

func (r *Reservation) OwnedBy(memberID uint) bool {
	return r.MemberID == memberID
}
