package service

import "errors"

// Sentinel errors returned by the services and repositories. Callers wrap them
// with context and match with errors.Is at the HTTP boundary.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
)
