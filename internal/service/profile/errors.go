package profile

import "errors"

var (
	ErrProfileIncomplete = errors.New("complete your profile first")
	ErrMentorNotFound    = errors.New("mentor not found")
	ErrFounderNotFound   = errors.New("founder not found")
	ErrInvalidStage      = errors.New("stage must be one of idea, pre_seed, seed, series_a, growth")
	ErrUnknownIndustry   = errors.New("unknown industry subcategory")
	ErrUnknownObjective  = errors.New("unknown objective")
	ErrInvalidExperience = errors.New("years_of_experience must not be negative")
)

// IsValidation reports whether err is a client input error.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrProfileIncomplete, ErrInvalidStage, ErrUnknownIndustry,
		ErrUnknownObjective, ErrInvalidExperience,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
