package domain

import "errors"

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrResolution     = errors.New("resolution error")
	ErrTransport      = errors.New("transport error")

	ErrNotFound = errors.New("not found")
)
