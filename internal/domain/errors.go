package domain

import "errors"

var (
	ErrDestinationNotFound   = errors.New("destination not found in flights")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrNotHolidayBooking     = errors.New("booking is not a holiday booking")
	ErrAccommodationNotFound = errors.New("accommodation not found at destination")
	ErrInvalidStay           = errors.New("invalid stay dates")
	ErrInvalidField          = errors.New("invalid field value")
	ErrNoPassengers          = errors.New("at least one passenger is required")
)
