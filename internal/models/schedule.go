package models

import (
	"errors"
	"time"
)

type Theme struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewTheme(name, description, thumbnailURL string) (*Theme, error) {
	if name == "" {
		return nil, errors.New("theme requires a name")
	}
	return &Theme{Name: name, Description: description, ThumbnailURL: thumbnailURL}, nil
}

const startAtLayout = "15:04"

// ReservationTime is a bookable time-of-day, e.g. "14:30". StartAt is stored
// as a wall-clock string so it carries no date or zone of its own.
type ReservationTime struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StartAt   string    `gorm:"type:varchar(5);not null;uniqueIndex" json:"start_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewReservationTime(startAt string) (*ReservationTime, error) {
	if _, err := time.Parse(startAtLayout, startAt); err != nil {
		return nil, errors.New("start_at must be in HH:MM format")
	}
	return &ReservationTime{StartAt: startAt}, nil
}

// On combines the time-of-day with a date into the slot's scheduled start
// instant.
func (t *ReservationTime) On(date time.Time) time.Time {
	clock, err := time.Parse(startAtLayout, t.StartAt)
	if err != nil {
		return date
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, time.UTC)
}
