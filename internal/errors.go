package addons

import "errors"

// Sentinel errors for the addons domain.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrBadRequest     = errors.New("bad request")
	ErrUpstream       = errors.New("upstream error")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownView    = errors.New("unknown view")
)
