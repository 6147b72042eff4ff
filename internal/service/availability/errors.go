package availability

import "errors"

var (
	ErrMentorNotFound   = errors.New("mentor not found")
	ErrNotMentor        = errors.New("only mentors can manage availability")
	ErrRuleNotFound     = errors.New("availability rule not found")
	ErrInvalidWeekday   = errors.New("weekday must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidTime      = errors.New("times must be formatted HH:MM")
	ErrInvalidTimeRange = errors.New("end_time must be after start_time")
	ErrInvalidDuration  = errors.New("slot_duration_minutes must be between 15 and 120")
	ErrInvalidTimezone  = errors.New("timezone must be a valid IANA zone name")
	ErrInvalidDays      = errors.New("days must be between 1 and the configured maximum")

	// ErrNoCalendar is returned by a BusyTimeProvider when the user has
	// not connected a calendar.
	ErrNoCalendar = errors.New("no calendar connection")
)

// IsValidation reports whether err is a client input error.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrInvalidWeekday, ErrInvalidTime, ErrInvalidTimeRange,
		ErrInvalidDuration, ErrInvalidTimezone, ErrInvalidDays,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
