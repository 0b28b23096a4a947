package service

import "errors"

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrThemeNotFound        = errors.New("theme not found")
	ErrTimeNotFound         = errors.New("reservation time not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrDuplicateReservation = errors.New("an active reservation already exists for this slot")
	ErrWaitingListExceeded  = errors.New("waiting list for this slot is full")
	ErrNotAuthorized        = errors.New("not allowed to modify this reservation")
	ErrAlreadyCancelled     = errors.New("reservation is already cancelled")
	// ErrConcurrencyConflict is the only error callers should retry.
	ErrConcurrencyConflict = errors.New("conflicting concurrent update, retry the request")

	ErrThemeInUse = errors.New("theme is referenced by existing reservations")
	ErrTimeInUse  = errors.New("reservation time is referenced by existing reservations")

	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
