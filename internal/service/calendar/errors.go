package calendar

import "errors"

var (
	ErrMissingRedirect = errors.New("redirect_uri is required")
	ErrMissingCode     = errors.New("code is required")
	ErrInvalidState    = errors.New("invalid or expired oauth state")
	ErrNotConnected    = errors.New("no calendar connection found")
	// ErrConnectFailed wraps the underlying exchange error. Its text is shown
	// to the user.
	ErrConnectFailed = errors.New("failed to connect calendar")
)
