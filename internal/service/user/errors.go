package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserType    = errors.New("user_type must be founder or mentor")
	ErrUserTypeAlreadySet = errors.New("user type already set")
	ErrNotMentor          = errors.New("user is not a mentor")
	ErrInvalidBio         = errors.New("bio must be 2000 characters or less")
	ErrInvalidName        = errors.New("name must be 100 characters or less")
	ErrInvalidURL         = errors.New("avatar URL must be a valid URL")
	ErrPhotoRequired      = errors.New("photo is required")
	ErrPhotoTooLarge      = errors.New("photo must be 5 MiB or smaller")
	ErrPhotoType          = errors.New("photo must be a JPEG or PNG image")
	ErrStorageDisabled    = errors.New("photo storage is not configured")
)

// IsValidation reports whether err is caused by bad input.
func IsValidation(err error) bool {
	for _, e := range []error{ErrInvalidUserType, ErrInvalidBio, ErrInvalidName, ErrInvalidURL, ErrPhotoRequired, ErrPhotoTooLarge, ErrPhotoType} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
