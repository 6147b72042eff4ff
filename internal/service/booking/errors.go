package booking

import "errors"

var (
	ErrNotFound         = errors.New("booking not found")
	ErrMentorNotFound   = errors.New("mentor not found")
	ErrForbidden        = errors.New("you cannot access this booking")
	ErrInvalidTimeRange = errors.New("end_time must be after start_time")
	ErrStartInPast      = errors.New("start_time must be in the future")
	ErrSlotNotAvailable = errors.New("slot is no longer available")
	ErrNotCancellable   = errors.New("only confirmed bookings can be cancelled")
	ErrNotCompletable   = errors.New("only past confirmed bookings can be completed")
	ErrSelfBooking      = errors.New("you cannot book yourself")
)
