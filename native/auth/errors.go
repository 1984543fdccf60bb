package auth

import "errors"

var (
	ErrStateNotConfigured = errors.New("auth: state not configured")
	ErrUnknownPermission  = errors.New("auth: unknown permission")
	ErrUnauthorized       = errors.New("auth: caller lacks permission")
)
