package connection

import "errors"

var (
	ErrNotFounder            = errors.New("only founders can send connection requests")
	ErrTargetNotFound        = errors.New("mentor not found")
	ErrSelfRequest           = errors.New("you cannot connect with yourself")
	ErrInvalidIntent         = errors.New("intent must be one of mentor_me, collaborate, peer_network")
	ErrAlreadyExists         = errors.New("connection request already exists")
	ErrReverseRequestPending = errors.New("they have already sent you a request")
	ErrRequestNotFound       = errors.New("request not found")
)
