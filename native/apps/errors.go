package apps

import "errors"

var (
	ErrStateNotConfigured = errors.New("apps: state not configured")
	ErrAppNotFound        = errors.New("apps: app not found")
	ErrAppExists          = errors.New("apps: app already registered")
	ErrInvalidName        = errors.New("apps: app name must not be empty")
	ErrZeroAddress        = errors.New("apps: zero address")
	ErrInvalidPercentage  = errors.New("apps: percentage out of range")
)
