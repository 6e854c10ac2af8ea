package service

import "errors"

var (
	// ErrNotFound is returned when a backend has no task with the given ID.
	ErrNotFound = errors.New("not found")

	// ErrAuth is returned when backend credentials are missing or rejected.
	ErrAuth = errors.New("auth error")
)
