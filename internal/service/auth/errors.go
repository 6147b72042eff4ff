package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrDevLoginDisabled   = errors.New("this endpoint is only available in development mode")
	ErrInvalidState       = errors.New("oauth state is missing or expired")
	ErrMissingRedirect    = errors.New("redirect_uri is required")
	ErrMissingCode        = errors.New("code is required")
	ErrEmailNotVerified   = errors.New("google account email is not verified")
	ErrGoogleFailed       = errors.New("google sign-in failed")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
