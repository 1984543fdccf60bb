package timelock

import "errors"

var (
	ErrStateNotConfigured = errors.New("timelock: state not configured")
	ErrOperationExists    = errors.New("timelock: operation already scheduled")
	ErrOperationNotFound  = errors.New("timelock: operation not found")
	ErrOperationNotReady  = errors.New("timelock: operation delay not elapsed")
	ErrOperationDone      = errors.New("timelock: operation already executed")
)
