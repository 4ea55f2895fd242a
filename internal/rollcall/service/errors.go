package service

import "errors"

var (
	ErrMissingFirstName      = errors.New("firstName is required")
	ErrUnknownAction         = errors.New("unknown action")
	ErrInvalidDateKey        = errors.New("date must be YYYY-MM-DD")
	ErrCheckOutBeforeCheckIn = errors.New("checkOut is before checkIn")
)
